package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/education"
)

type contentList struct {
	Count int                  `json:"count"`
	Items []models.ContentItem `json:"items"`
}

func createContent(t *testing.T, e *testEnv, token string, item map[string]interface{}) models.ContentItem {
	t.Helper()
	rr := e.do(http.MethodPost, "/api/admin/content", token, item)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var saved models.ContentItem
	decodeData(t, rr, &saved)
	return saved
}

func TestContent_PublishFlow(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.signup("Root", adminEmail)

	draft := createContent(t, e, adminToken, map[string]interface{}{
		"title": "What is an ETF?", "body": "An **ETF** is a basket of assets.",
	})
	assert.Equal(t, models.ContentKindArticle, draft.Kind)
	assert.Contains(t, draft.HTML, "<strong>ETF</strong>")
	assert.False(t, draft.Published)

	news := createContent(t, e, adminToken, map[string]interface{}{
		"title": "Markets rally", "kind": "news", "body": "Stocks rose today.", "published": true,
	})

	rr := e.do(http.MethodGet, "/api/content/"+draft.ContentID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do(http.MethodGet, "/api/content", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list contentList
	decodeData(t, rr, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, news.ContentID, list.Items[0].ContentID)

	rr = e.do(http.MethodPut, "/api/admin/content/"+draft.ContentID, adminToken, map[string]interface{}{
		"title": "What is an ETF?", "body": "An **ETF** is a basket of assets.", "published": true,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = e.do(http.MethodGet, "/api/content/"+draft.ContentID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(http.MethodGet, "/api/content?kind=news", "", nil)
	decodeData(t, rr, &list)
	assert.Equal(t, 1, list.Count)

	rr = e.do(http.MethodGet, "/api/news?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Markets rally", list.Items[0].Title)

	rr = e.do(http.MethodGet, "/api/admin/content", adminToken, nil)
	decodeData(t, rr, &list)
	assert.Equal(t, 2, list.Count)

	rr = e.do(http.MethodPost, "/api/admin/content", adminToken, map[string]interface{}{"title": " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = e.do(http.MethodPut, "/api/admin/content/missing", adminToken, map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/admin/content/"+news.ContentID, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/content/"+news.ContentID, adminToken, nil).Code)
}

func TestContentImport_RejectsInvalidPDF(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.signup("Root", adminEmail)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("this is not a pdf"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/content/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rr).Code)

	rr = e.do(http.MethodPost, "/api/admin/content/import", adminToken, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExplain(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/api/education/explain?concept="+url.QueryEscape("Diversificación"), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var exp interfaces.Explanation
	decodeData(t, rr, &exp)
	assert.Equal(t, education.SourceGlossary, exp.Source)
	assert.NotEmpty(t, exp.Explanation)

	rr = e.do(http.MethodGet, "/api/education/explain?concept=quantitative+easing", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &exp)
	assert.Equal(t, education.SourceNone, exp.Source)

	rr = e.do(http.MethodGet, "/api/education/explain", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSupport(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.signup("Root", adminEmail)
	anaID, anaToken := e.signup("Ana", "ana@example.com")

	rr := e.do(http.MethodPost, "/api/support/contact", "", map[string]string{"name": "Guest", "message": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(http.MethodPost, "/api/support/contact", "", map[string]string{
		"name": "Guest", "email": "guest@example.com", "message": "Hello",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = e.do(http.MethodPost, "/api/support/contact", anaToken, map[string]string{"message": "I forgot my goal"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		TicketID string `json:"ticket_id"`
		Status   string `json:"status"`
	}
	decodeData(t, rr, &created)
	assert.Equal(t, models.SupportStatusPending, created.Status)
	require.NotEmpty(t, created.TicketID)

	rr = e.do(http.MethodGet, "/api/admin/support/messages/"+created.TicketID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var ticket models.SupportTicket
	decodeData(t, rr, &ticket)
	assert.Equal(t, anaID, ticket.UserID)
	assert.Equal(t, "Ana", ticket.Name)
	assert.Equal(t, "ana@example.com", ticket.Email)

	path := "/api/admin/support/messages/" + created.TicketID
	rr = e.do(http.MethodPatch, path, adminToken, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(http.MethodPatch, path, adminToken, map[string]string{"status": models.SupportStatusResolved, "notes": "Replied by email"})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &ticket)
	assert.Equal(t, models.SupportStatusResolved, ticket.Status)
	assert.Equal(t, "Replied by email", ticket.Notes)

	rr = e.do(http.MethodGet, "/api/admin/support/messages?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count int `json:"count"`
	}
	decodeData(t, rr, &list)
	assert.Equal(t, 1, list.Count)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, path, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, path, adminToken, nil).Code)
}
