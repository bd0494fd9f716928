package value

// enumMark wraps enum labels in the exporter's string form.
const enumMark = '©'

// resourceMarks maps a resource kind to the glyph that wraps its name.
var resourceMarks = map[string]rune{
	"Material":   '❆',
	"Object":     '⊞',
	"Collection": '✸',
	"Image":      '✷',
	"Mesh":       '⧉',
	"Curve":      '𝒞',
}

var resourceKinds = func() map[rune]string {
	m := make(map[rune]string, len(resourceMarks))
	for kind, mark := range resourceMarks {
		m[mark] = kind
	}
	return m
}()

// ResourceKinds returns the resource kinds that have a delimiter glyph.
func ResourceKinds() []string {
	return []string{"Material", "Object", "Collection", "Image", "Mesh", "Curve"}
}

// IsResourceMark reports whether r opens a resource reference.
func IsResourceMark(r rune) bool {
	_, ok := resourceKinds[r]
	return ok
}
