package adsclient

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte("PK\x03\x04")

	ErrEmptyReport = errors.New("empty report payload")
)

// DecodeReport descompacta (gzip, zip ou nenhum) e interpreta o conteúdo do
// relatório como array JSON ou CSV com cabeçalho
func DecodeReport(raw []byte) ([]adsdomain.ReportRow, error) {
	content, err := decompress(raw)
	if err != nil {
		return nil, err
	}

	content = bytes.TrimSpace(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")))
	if len(content) == 0 {
		return nil, ErrEmptyReport
	}

	if content[0] == '[' {
		return decodeJSONRows(content)
	}
	return decodeCSVRows(content)
}

func decompress(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, gzipMagic):
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer reader.Close()
		return io.ReadAll(reader)

	case bytes.HasPrefix(raw, zipMagic):
		archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
		if err != nil {
			return nil, fmt.Errorf("zip: %w", err)
		}
		if len(archive.File) == 0 {
			return nil, ErrEmptyReport
		}
		file, err := archive.File[0].Open()
		if err != nil {
			return nil, fmt.Errorf("zip: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)

	default:
		return raw, nil
	}
}

func decodeJSONRows(content []byte) ([]adsdomain.ReportRow, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var items []map[string]any
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("json report: %w", err)
	}

	rows := make([]adsdomain.ReportRow, 0, len(items))
	for _, item := range items {
		row := make(adsdomain.ReportRow, len(item))
		for k, v := range item {
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeCSVRows(content []byte) ([]adsdomain.ReportRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv report header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []adsdomain.ReportRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv report line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv report line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		row := make(adsdomain.ReportRow, len(header))
		for i, name := range header {
			row[name] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
