package exporter

import (
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// parquetRow is the cleaned-data Parquet schema. Every canonical column is
// optional; decimals travel as strings so no precision is lost.
type parquetRow struct {
	Date       *string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Revenue    *string `parquet:"name=revenue, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Cost       *string `parquet:"name=cost, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Units      *string `parquet:"name=units, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Region     *string `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Product    *string `parquet:"name=product, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SourceFile *string `parquet:"name=source_file, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// WriteParquet writes the canonical columns of the fact table. Passthrough
// columns are left out.
func WriteParquet(path string, fact *types.FactTable) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to build parquet schema: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := 0; i < fact.Len; i++ {
		row := &parquetRow{
			Date:       optionalCell(fact, types.FieldDate, i),
			Revenue:    optionalCell(fact, types.FieldRevenue, i),
			Cost:       optionalCell(fact, types.FieldCost, i),
			Units:      optionalCell(fact, types.FieldUnits, i),
			Region:     optionalCell(fact, types.FieldRegion, i),
			Product:    optionalCell(fact, types.FieldProduct, i),
			SourceFile: optionalCell(fact, types.FieldSourceFile, i),
		}
		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("failed to write parquet row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush parquet file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

func optionalCell(fact *types.FactTable, name string, i int) *string {
	if !fact.Has(name) || fact.IsNull(name, i) {
		return nil
	}
	s := FormatCell(fact, name, i)
	return &s
}
