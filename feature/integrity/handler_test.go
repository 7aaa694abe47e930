package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"tlf-sync/core/storage"
	"tlf-sync/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, client storage.Client) (*fiber.App, sqlmock.Sqlmock) {
	app := fiber.New()
	source, sqlMock := setupMockDB(t)
	ledger := setupSQLite(t)
	svc := NewService(ledger, source, client, archiveConfig, zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, sqlMock
}

func decode(t *testing.T, app *fiber.App, url string) (int, map[string]any) {
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleSourceCheck(t *testing.T) {
	app, sqlMock := setupTestApp(t, nil)

	// Expect queries - relaxed matching
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}))
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}))
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}))

	status, body := decode(t, app, "/integrity/source")
	assert.Equal(t, 200, status)
	assert.Equal(t, "source", body["database"])
	assert.Equal(t, false, body["matched"])
}

func TestHandleLedgerCheck(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, body := decode(t, app, "/integrity/ledger")
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["matched"])

	status, body = decode(t, app, "/integrity/ledger?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["matched"])
}

func TestHandleArchiveCheck(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		app, _ := setupTestApp(t, nil)
		status, body := decode(t, app, "/integrity/archive")
		assert.Equal(t, 404, status)
		assert.Equal(t, ErrArchiveNotConfigured.Error(), body["error"])
	})

	t.Run("missing bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "tlf-archive").Return(false, nil)
		app, _ := setupTestApp(t, client)

		status, body := decode(t, app, "/integrity/archive")
		assert.Equal(t, 200, status)
		assert.Equal(t, false, body["exists"])
	})
}

func TestHandleIntegrityCheck(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "tlf-archive").Return(true, nil)
	ch := make(chan minio.ObjectInfo)
	close(ch)
	client.On("ListObjects", mock.Anything, "tlf-archive", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))
	app, sqlMock := setupTestApp(t, client)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)

	status, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, status)
	require.Contains(t, body, "source")
	require.Contains(t, body, "ledger")
	archive := body["archive"].(map[string]any)
	assert.Equal(t, true, archive["exists"])
}
