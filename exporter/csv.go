package exporter

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dadata-project/party-stats/dadata"
)

var ErrUnexpectedHeader = errors.New("unexpected table header")

// WriteCompanies writes the table as BOM-prefixed UTF-8 CSV with a header
// row and no index column, the layout spreadsheet tools open without an
// import dialog.
func WriteCompanies(w io.Writer, records []dadata.CompanyRecord) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())

	cw := csv.NewWriter(tw)

	if err := cw.Write(dadata.Columns); err != nil {
		return err
	}

	for i := range records {
		if err := cw.Write(records[i].Row()); err != nil {
			return err
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return err
	}

	return tw.Close()
}

// ReadCompanies reads a table written by WriteCompanies. The BOM is optional.
func ReadCompanies(r io.Reader) ([]dadata.CompanyRecord, error) {
	src, err := keepLineBreaks(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = len(dadata.Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if !slices.Equal(header, dadata.Columns) {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedHeader, header)
	}

	records := []dadata.CompanyRecord{}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		records = append(records, dadata.RecordFromRow(row))
	}

	return records, nil
}

// keepLineBreaks protects "\r\n" inside quoted fields. WriteCompanies ends
// records with a bare "\n", so in its output every "\r\n" is field data;
// encoding/csv would fold it to "\n", but it folds "\r\r\n" back to "\r\n".
// Tables whose header ends in "\r\n" come from elsewhere and are left alone.
func keepLineBreaks(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	head := strings.NewReader(header)

	if strings.HasSuffix(header, "\r\n") {
		return io.MultiReader(head, br), nil
	}

	return io.MultiReader(head, transform.NewReader(br, doubleCR{})), nil
}

// doubleCR rewrites every "\r\n" as "\r\r\n".
type doubleCR struct {
	transform.NopResetter
}

func (doubleCR) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]

		if c == '\r' {
			if nSrc+1 == len(src) && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}

			if nSrc+1 < len(src) && src[nSrc+1] == '\n' {
				if nDst+2 > len(dst) {
					return nDst, nSrc, transform.ErrShortDst
				}

				dst[nDst], dst[nDst+1] = '\r', '\r'
				nDst += 2
				nSrc++

				continue
			}
		}

		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		dst[nDst] = c
		nDst++
		nSrc++
	}

	return nDst, nSrc, nil
}

func SaveCompanies(path string, records []dadata.CompanyRecord) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCompanies(w, records)
	})
}

func LoadCompanies(path string) ([]dadata.CompanyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCompanies(f)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := fn(f); err != nil {
		_ = f.Close()

		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
