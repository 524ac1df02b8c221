package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/service-desk/internal/policy"
)

func TestTicketCommentsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.login(t, policy.RoleUser)
	agentToken, _ := s.login(t, policy.RoleAgent)
	viewerToken, _ := s.login(t, policy.RoleViewer)

	status, body := s.do(t, http.MethodPost, "/tickets", userToken, map[string]any{"title": "Cannot print"})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["data"].(map[string]any)["id"].(string)
	path := "/tickets/" + id + "/comments"

	status, body = s.do(t, http.MethodPost, path, userToken, map[string]any{"body": "tried restarting"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, false, body["data"].(map[string]any)["internal"])

	status, body = s.do(t, http.MethodPost, path, agentToken, map[string]any{"body": "driver mismatch", "internal": true})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = s.do(t, http.MethodPost, path, userToken, map[string]any{"body": "secret", "internal": true})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, _ = s.do(t, http.MethodPost, path, viewerToken, map[string]any{"body": "+1"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodPost, path, agentToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, http.MethodGet, path, agentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 2)

	status, body = s.do(t, http.MethodGet, path, userToken, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "tried restarting", items[0].(map[string]any)["body"])

	status, _ = s.do(t, http.MethodGet, "/tickets/00000000-0000-0000-0000-000000000000/comments", agentToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAssetRoutesFollowPolicy(t *testing.T) {
	s := newTestServer(t)
	adminToken, _ := s.login(t, policy.RoleAdmin)
	managerToken, _ := s.login(t, policy.RoleManager)
	agentToken, _ := s.login(t, policy.RoleAgent)
	userToken, _ := s.login(t, policy.RoleUser)

	status, body := s.do(t, http.MethodPost, "/asset-types", adminToken, map[string]any{"name": "Server"})
	require.Equal(t, http.StatusCreated, status, body)
	typeID := body["data"].(map[string]any)["id"].(string)

	status, body = s.do(t, http.MethodPost, "/assets", adminToken, map[string]any{
		"asset_tag":     "srv-001",
		"name":          "Mail relay",
		"asset_type_id": typeID,
		"ip_address":    "10.0.0.5",
		"criticality":   "HIGH",
	})
	require.Equal(t, http.StatusCreated, status, body)
	asset := body["data"].(map[string]any)
	assert.Equal(t, "SRV-001", asset["asset_tag"])
	assert.Equal(t, "high", asset["criticality"])
	id := asset["id"].(string)

	status, body = s.do(t, http.MethodPost, "/assets", adminToken, map[string]any{"asset_tag": "SRV-001", "name": "dup"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/assets", adminToken, map[string]any{"asset_tag": "SRV-002", "name": "x", "ip_address": "not-an-ip"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.do(t, http.MethodPost, "/assets", managerToken, map[string]any{"asset_tag": "SRV-003", "name": "y"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodPatch, "/assets/"+id, managerToken, map[string]any{"status": "retired"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "retired", body["data"].(map[string]any)["status"])

	status, _ = s.do(t, http.MethodPatch, "/assets/"+id, agentToken, map[string]any{"status": "active"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, "/assets?status=retired", agentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)
	status, _ = s.do(t, http.MethodGet, "/assets?status=lost", agentToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/assets", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/asset-types", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, int64(2), s.metrics.Snapshot().Denied["user|assets|read"])

	status, _ = s.do(t, http.MethodDelete, "/assets/"+id, managerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodDelete, "/assets/"+id, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestKnowledgeRoutesHideDrafts(t *testing.T) {
	s := newTestServer(t)
	agentToken, _ := s.login(t, policy.RoleAgent)
	userToken, _ := s.login(t, policy.RoleUser)

	status, body := s.do(t, http.MethodPost, "/knowledge/articles", agentToken, map[string]any{"title": "Reset password", "status": "Published"})
	require.Equal(t, http.StatusCreated, status, body)
	published := body["data"].(map[string]any)
	assert.Equal(t, "published", published["status"])
	assert.NotNil(t, published["published_at"])

	status, body = s.do(t, http.MethodPost, "/knowledge/articles", agentToken, map[string]any{"title": "Unreleased fix"})
	require.Equal(t, http.StatusCreated, status, body)
	draftID := body["data"].(map[string]any)["id"].(string)

	status, _ = s.do(t, http.MethodPost, "/knowledge/articles", userToken, map[string]any{"title": "My article"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, "/knowledge/articles?status=draft,published", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)

	status, body = s.do(t, http.MethodGet, "/knowledge/articles", agentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 2)

	status, _ = s.do(t, http.MethodGet, "/knowledge/articles/"+draftID, userToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	id := published["id"].(string)
	status, body = s.do(t, http.MethodPost, "/knowledge/articles/"+id+"/feedback", userToken, map[string]any{"vote": "helpful"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["helpful_count"])

	status, _ = s.do(t, http.MethodPost, "/knowledge/articles/"+id+"/feedback", userToken, map[string]any{"vote": "love"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodDelete, "/knowledge/articles/"+id, agentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOrganizationRoutesAdminOnly(t *testing.T) {
	s := newTestServer(t)
	adminToken, _ := s.login(t, policy.RoleAdmin)
	managerToken, _ := s.login(t, policy.RoleManager)

	status, body := s.do(t, http.MethodGet, "/organization", adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Service Desk", body["data"].(map[string]any)["name"])

	status, _ = s.do(t, http.MethodGet, "/organization", managerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodPatch, "/organization", adminToken, map[string]any{
		"name":     "Acme IT",
		"domain":   "acme.example.com",
		"settings": map[string]any{"business_hours": "09-17"},
	})
	require.Equal(t, http.StatusOK, status, body)
	org := body["data"].(map[string]any)
	assert.Equal(t, "Acme IT", org["name"])
	assert.Equal(t, "09-17", org["settings"].(map[string]any)["business_hours"])

	status, body = s.do(t, http.MethodPatch, "/organization", adminToken, map[string]any{"domain": "not a domain"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}
