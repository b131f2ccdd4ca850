package source

import (
	"io"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/xuri/excelize/v2"
)

// ReadExcelRecords reads the first worksheet of an .xlsx workbook. The first
// row is the header; cells are read as their formatted text.
func ReadExcelRecords(r io.Reader) (header []string, records [][]string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, core.Wrap(core.KindInvalidArgument, err, "failed to open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, core.InvalidArgumentf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, core.Wrap(core.KindInvalidArgument, err, "failed to read worksheet "+sheets[0])
	}
	if len(rows) == 0 {
		return nil, nil, core.InvalidArgumentf("worksheet %s is empty", sheets[0])
	}
	return rows[0], rows[1:], nil
}

// ReadExcel reads a workbook and infers its schema.
func ReadExcel(r io.Reader, sampleSize int) (*Table, error) {
	header, records, err := ReadExcelRecords(r)
	if err != nil {
		return nil, err
	}
	return BuildTable(header, records, sampleSize)
}
