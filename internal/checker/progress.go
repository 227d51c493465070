package checker

// ProgressReporter provides callbacks for reporting check progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called when stub discovery finishes.
	OnDiscoveryComplete(stubFiles int)

	// OnFileParsed is called after each stub file is parsed, successfully or not.
	OnFileParsed(fileName string)

	// OnReflectionLoaded is called when runtime data is available.
	OnReflectionLoaded(functions int)

	// OnComplete is called when the comparison finishes.
	OnComplete(result *Result)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryComplete(stubFiles int) {}
func (NoOpProgressReporter) OnFileParsed(fileName string)      {}
func (NoOpProgressReporter) OnReflectionLoaded(functions int)  {}
func (NoOpProgressReporter) OnComplete(result *Result)         {}
