package subjects

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstack/app/models"
	"bookstack/core/emitter"
	"bookstack/core/logger"
)

func newTestService(t *testing.T) (*SubjectService, *emitter.Emitter) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subject{}))

	log, err := logger.NewLogger(logger.Config{Environment: "debug", Level: "error"})
	require.NoError(t, err)

	em := emitter.New()
	return NewSubjectService(db, em, log), em
}

func csvUpload(t *testing.T, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "subjects.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func TestCreateSetsSlug(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.Create(&models.CreateSubjectRequest{Name: "Machine Learning"})
	require.NoError(t, err)
	assert.Equal(t, "machine-learning", item.Slug)
}

func TestImportCSV(t *testing.T) {
	svc, em := newTestService(t)

	t.Run("creates new rows", func(t *testing.T) {
		progress, err := svc.ImportCSV(csvUpload(t, "name,description\nPhysics,Natural science\nChemistry,\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, progress.Created)
		assert.Equal(t, 0, progress.Updated)
		assert.True(t, progress.Done)

		item, err := svc.GetById(1)
		require.NoError(t, err)
		assert.Equal(t, "Physics", item.Name)
		assert.Equal(t, "Natural science", item.Description)
	})

	t.Run("upserts by slug", func(t *testing.T) {
		progress, err := svc.ImportCSV(csvUpload(t, "name,description\nPHYSICS,Updated text\n"))
		require.NoError(t, err)
		assert.Equal(t, 0, progress.Created)
		assert.Equal(t, 1, progress.Updated)

		items, err := svc.GetAllForSelect()
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("blank names are skipped", func(t *testing.T) {
		progress, err := svc.ImportCSV(csvUpload(t, "name,description\n,orphan row\nBiology,\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, progress.Created)
		assert.Equal(t, 1, progress.Skipped)
		assert.Equal(t, 2, progress.Processed)
	})

	t.Run("missing name column rejected", func(t *testing.T) {
		_, err := svc.ImportCSV(csvUpload(t, "title\nPhysics\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("emits a final progress event", func(t *testing.T) {
		var events []ImportProgress
		em.On(ImportProgressEvent, func(data any) {
			if p, ok := data.(ImportProgress); ok {
				events = append(events, p)
			}
		})

		_, err := svc.ImportCSV(csvUpload(t, "name\nGeology\n"))
		require.NoError(t, err)
		require.NotEmpty(t, events)
		assert.True(t, events[len(events)-1].Done)
	})
}

func TestExportCSVRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&models.CreateSubjectRequest{Name: "Physics", Description: "Natural science"})
	require.NoError(t, err)
	_, err = svc.Create(&models.CreateSubjectRequest{Name: "Chemistry"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,description", lines[0])
	assert.Equal(t, "Chemistry,", lines[1])
	assert.Equal(t, "Physics,Natural science", lines[2])

	// Importing the export back changes nothing.
	progress, err := svc.ImportCSV(csvUpload(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Created)
	assert.Equal(t, 2, progress.Updated)

	items, err := svc.GetAllForSelect()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
