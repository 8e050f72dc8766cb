package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
)

func TestFileReport(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	reporter := createTestUser(t, db, "reporter")
	post := createTestPost(t, db, author.Id, "objectionable")

	w := doRequest(router, "POST", "/reports", reporter.Id, map[string]string{
		"subject_type": model.SubjectTypePost,
		"subject_id":   post.Id,
		"reason":       "spam",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var report model.Report
	decodeBody(t, w, &report)
	require.Equal(t, model.ReportStatusOpen, report.Status)

	var mine []model.Report
	w = doRequest(router, "GET", "/reports", reporter.Id, nil)
	decodeBody(t, w, &mine)
	require.Len(t, mine, 1)

	// Reports against nothing are rejected.
	w = doRequest(router, "POST", "/reports", reporter.Id, map[string]string{
		"subject_type": model.SubjectTypePost,
		"subject_id":   "no-such-post",
		"reason":       "spam",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "POST", "/reports", reporter.Id, map[string]string{
		"subject_type": "galaxy",
		"subject_id":   post.Id,
		"reason":       "spam",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}
