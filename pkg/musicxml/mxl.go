package musicxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/haivivi/songbook/pkg/score"
)

const containerPath = "META-INF/container.xml"

type container struct {
	RootFiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// IsCompressed reports whether data is a zip archive, as used by .mxl files.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// extractRoot returns the score document of a compressed archive: the first
// rootfile of META-INF/container.xml, or else the first XML file outside
// META-INF.
func extractRoot(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: mxl: %v", score.ErrMalformedDocument, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var root *zip.File
	if f, ok := files[containerPath]; ok {
		raw, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		var c container
		if err := xml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: mxl: container: %v", score.ErrMalformedDocument, err)
		}
		for _, rf := range c.RootFiles {
			if f, ok := files[rf.FullPath]; ok {
				root = f
				break
			}
		}
	}
	if root == nil {
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "META-INF/") {
				continue
			}
			if ext := path.Ext(f.Name); ext == ".xml" || ext == ".musicxml" {
				root = f
				break
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: mxl: no score document in archive", score.ErrMalformedDocument)
	}
	return readZipFile(root)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: mxl: %s: %v", score.ErrMalformedDocument, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: mxl: %s: %v", score.ErrMalformedDocument, f.Name, err)
	}
	return data, nil
}
