// Package phpdoc parses PHPDoc comment blocks into tags and type expressions.
package phpdoc

// Tag is one "@name body" annotation of a doc block.
type Tag interface {
	Name() string
	Body() string
}

// GenericTag is any tag without a dedicated representation.
type GenericTag struct {
	name string
	body string
}

func (t *GenericTag) Name() string { return t.name }
func (t *GenericTag) Body() string { return t.body }

// ReturnTag is a well-formed "@return <type> [description]".
type ReturnTag struct {
	body        string
	Type        Type
	Description string
}

func (t *ReturnTag) Name() string { return "return" }
func (t *ReturnTag) Body() string { return t.body }

// InvalidTag is a known tag whose body could not be interpreted.
type InvalidTag struct {
	name string
	body string
	Err  error
}

func (t *InvalidTag) Name() string { return t.name }
func (t *InvalidTag) Body() string { return t.body }

// DocBlock is a parsed doc comment.
type DocBlock struct {
	Summary     string
	Description string
	Tags        []Tag
}

// TagsByName returns tags named name in document order, or nil.
func (d *DocBlock) TagsByName(name string) []Tag {
	var tags []Tag
	for _, t := range d.Tags {
		if t.Name() == name {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasTag reports whether at least one tag is named name.
func (d *DocBlock) HasTag(name string) bool {
	for _, t := range d.Tags {
		if t.Name() == name {
			return true
		}
	}
	return false
}

// Return returns the first "@return" tag when it is well formed.
func (d *DocBlock) Return() (*ReturnTag, bool) {
	tags := d.TagsByName("return")
	if len(tags) == 0 {
		return nil, false
	}
	rt, ok := tags[0].(*ReturnTag)
	return rt, ok
}
