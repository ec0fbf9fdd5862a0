package asset

import (
	"fmt"

	"github.com/h2non/filetype"
)

// sniff rejects data recognized as a binary format (PNG, JPEG, fonts, archives...).
// SVG documents are text and are never matched.
func sniff(data []byte) error {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil
	}
	return fmt.Errorf("%s data is not an svg document", kind.MIME.Value)
}
