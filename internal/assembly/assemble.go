package assembly

import "strings"

// ManifestKey is the field that carries the manifest text in the merged document.
const ManifestKey = "manifest_file"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Flatten replaces every line break in text with a single space.
func Flatten(text string) string {
	return lineBreaks.Replace(text)
}

// ManifestDocument wraps manifest text as {"manifest_file": "<flattened text>"}.
func ManifestDocument(text string) *Document {
	doc := NewDocument()
	// strings always encode
	_ = doc.Set(ManifestKey, Flatten(text))
	return doc
}

// Build parses the probe output and, when manifest is non-nil, merges the
// wrapped manifest over it. The manifest field wins on collision.
func Build(probeOutput []byte, manifest *string) (*Document, error) {
	doc, err := ParseDocument(probeOutput)
	if err != nil {
		return nil, err
	}
	if manifest != nil {
		doc.Merge(ManifestDocument(*manifest))
	}
	return doc, nil
}

// Assemble is Build followed by Pretty.
func Assemble(probeOutput []byte, manifest *string) ([]byte, error) {
	doc, err := Build(probeOutput, manifest)
	if err != nil {
		return nil, err
	}
	return doc.Pretty()
}
