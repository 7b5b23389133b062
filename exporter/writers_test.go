package exporter

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/location"
	"github.com/dadata-project/party-stats/pipeline"
)

func testResult(summary location.Summary) *pipeline.Result {
	return &pipeline.Result{
		RunID:    "run-1",
		Category: pipeline.Category{Name: "companies_active"},
		Records: []dadata.CompanyRecord{
			{Value: "ООО Альфа", Address: "г. Минск"},
			{Value: "ООО Бета", Address: "г. Минск"},
		},
		Summary: summary,
	}
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir)

	res := testResult(location.Summary{{Label: "Минск", Count: 2}})
	require.NoError(t, w.Write(context.Background(), res))

	records, err := LoadCompanies(w.CompaniesPath("companies_active"))
	require.NoError(t, err)
	assert.Equal(t, res.Records, records)

	summary, err := LoadSummary(w.SummaryPath("companies_active"))
	require.NoError(t, err)
	assert.Equal(t, res.Summary, summary)
}

func TestFileWriterSkipsMissingSummary(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir)

	res := testResult(nil)
	res.Records = []dadata.CompanyRecord{}

	require.NoError(t, w.Write(context.Background(), res))

	assert.FileExists(t, w.CompaniesPath("companies_active"))
	assert.NoFileExists(t, w.SummaryPath("companies_active"))
}

func TestWriteWorkbook(t *testing.T) {
	res := testResult(location.Summary{{Label: "Минск", Count: 2}})

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, res.Records, res.Summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	defer f.Close()

	rows, err := f.GetRows(SheetCompanies)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, dadata.Columns, rows[0])
	assert.Equal(t, "ООО Бета", rows[2][0])

	rows, err = f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"city_or_region", "count"}, {"Минск", "2"}}, rows)
}

func TestXLSXWriterWithoutSummary(t *testing.T) {
	w := NewXLSXWriter(t.TempDir())

	require.NoError(t, w.Write(context.Background(), testResult(nil)))

	f, err := excelize.OpenFile(w.Path("companies_active"))
	require.NoError(t, err)

	defer f.Close()

	assert.Equal(t, []string{SheetCompanies}, f.GetSheetList())
}

type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body

	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	u := NewS3Uploader(fake, "bucket", "exports")

	res := testResult(location.Summary{{Label: "Минск", Count: 2}})
	require.NoError(t, u.Write(context.Background(), res))

	require.Len(t, fake.objects, 2)

	records, err := ReadCompanies(bytes.NewReader(fake.objects["bucket/exports/run-1/companies_active.csv"]))
	require.NoError(t, err)
	assert.Equal(t, res.Records, records)

	assert.Equal(t, "city_or_region\tcount\nМинск\t2\n",
		string(fake.objects["bucket/exports/run-1/companies_active_result.csv"]))
}

func TestS3UploaderError(t *testing.T) {
	fake := &fakeS3{err: os.ErrPermission}
	u := NewS3Uploader(fake, "bucket", "")

	err := u.Write(context.Background(), testResult(nil))
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "run-1/companies_active.csv", u.Key("run-1", "companies_active.csv"))
}
