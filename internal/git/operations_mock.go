package git

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	Branch   string
	Revision string
	Dirty    bool
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		Branch:   "master",
		Revision: "0123456789abcdef0123456789abcdef01234567",
	}
}

func (m *MockGitOps) CurrentBranch(dir string) string { return m.Branch }
func (m *MockGitOps) HeadRevision(dir string) string  { return m.Revision }
func (m *MockGitOps) IsDirty(dir string) bool         { return m.Dirty }
