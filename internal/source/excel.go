package source

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/logging"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

// ReadWorkbook reads clinic records from an xlsx file on disk.
func ReadWorkbook(path string, sheetIndex int, cols config.Columns) ([]registry.ClinicRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	return readSheet(f, path, sheetIndex, cols)
}

// ReadWorkbookData reads clinic records from xlsx bytes already in memory,
// as produced by the remote fetch.
func ReadWorkbookData(r io.Reader, name string, sheetIndex int, cols config.Columns) ([]registry.ClinicRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.WrapParse("xlsx", name, err)
	}
	defer f.Close()

	return readSheet(f, name, sheetIndex, cols)
}

func readSheet(f *excelize.File, name string, sheetIndex int, cols config.Columns) ([]registry.ClinicRecord, error) {
	sheets := f.GetSheetList()
	if sheetIndex < 0 || sheetIndex >= len(sheets) {
		return nil, errors.NewParseError("xlsx", name,
			fmt.Sprintf("sheet index %d out of range (workbook has %d sheets)", sheetIndex, len(sheets)), nil)
	}
	sheet := sheets[sheetIndex]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapParse("xlsx", name, err)
	}
	if len(rows) == 0 {
		return nil, errors.NewSchemaError(name, sheet, requiredColumns(cols))
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.TrimSpace(header)] = i
	}
	var missing []string
	for _, col := range requiredColumns(cols) {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError(name, sheet, missing)
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	log := logging.Default()
	var records []registry.ClinicRecord
	seen := make(map[string]bool)
	var dups []string
	emptyCount := 0

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		clinicName := registry.NormalizeName(cell(row, cols.Name))
		if clinicName == "" {
			emptyCount++
			continue
		}

		rec := registry.ClinicRecord{
			Name:     clinicName,
			Address:  cell(row, cols.Address),
			Phone:    cell(row, cols.Phone),
			Director: cell(row, cols.Director),
			Homepage: cell(row, cols.Homepage),
			Row:      rowNum,
		}
		warnMissing(log, clinicName, cols.Address, rec.Address)
		warnMissing(log, clinicName, cols.Phone, rec.Phone)
		warnMissing(log, clinicName, cols.Director, rec.Director)
		warnMissing(log, clinicName, cols.Homepage, rec.Homepage)

		if seen[clinicName] {
			dups = append(dups, clinicName)
			continue
		}
		seen[clinicName] = true
		records = append(records, rec)
	}

	if emptyCount > 0 {
		log.Warn().Int("count", emptyCount).Msg("skipped rows with empty clinic name after normalization")
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, errors.NewDuplicateNameError("input", dups)
	}

	return records, nil
}

func requiredColumns(cols config.Columns) []string {
	return []string{cols.Name, cols.Address, cols.Phone, cols.Director, cols.Homepage}
}

func warnMissing(log *zerolog.Logger, clinicName, column, value string) {
	if value == "" {
		log.Warn().Str("clinic_name", clinicName).Str("column", column).Msg("missing optional field")
	}
}
