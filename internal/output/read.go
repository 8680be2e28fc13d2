package output

import (
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/fileutil"
)

var ErrIndexMissing = errors.Base("index missing")

// ReadIndex loads the flat index from a generated output directory, whichever
// format and layout produced it.
func ReadIndex(dir string) ([]encode.Reference, string, error) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		path := filepath.Join(dir, IndexFile(format))
		data, err := fileutil.ReadIfExists(path)
		if err != nil {
			return nil, "", err
		}
		if data != nil {
			var index []encode.Reference
			if err := unmarshal(format, data, &index); err != nil {
				return nil, "", errors.Errorf("decode %s: %w", path, err)
			}
			return index, path, nil
		}

		path = filepath.Join(dir, BundleFile(format))
		data, err = fileutil.ReadIfExists(path)
		if err != nil {
			return nil, "", err
		}
		if data != nil {
			var bundle struct {
				Index []encode.Reference `json:"index" yaml:"index"`
			}
			if err := unmarshal(format, data, &bundle); err != nil {
				return nil, "", errors.Errorf("decode %s: %w", path, err)
			}
			return bundle.Index, path, nil
		}
	}
	return nil, "", errors.Errorf("%w in %s (run bundledoc generate)", ErrIndexMissing, dir)
}
