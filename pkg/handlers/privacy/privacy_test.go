package privacy_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/handlers/privacy"
	"github.com/chris/ethicalbank/pkg/logging"
	"github.com/chris/ethicalbank/pkg/models"
	privacysvc "github.com/chris/ethicalbank/pkg/privacy"
	privacymocks "github.com/chris/ethicalbank/pkg/privacy/mocks"
	"github.com/chris/ethicalbank/pkg/storage"
	"github.com/chris/ethicalbank/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHandler(store *mocks.Storage, recorder *privacymocks.ConsentRecorder) *privacy.PrivacyHandler {
	svc := privacysvc.NewService(store, recorder, nil, logging.Discard())
	return privacy.NewPrivacyHandler(svc, logging.Discard())
}

func request(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: "user1"}))
}

func TestGetDataAttributes(t *testing.T) {
	h := newHandler(new(mocks.Storage), new(privacymocks.ConsentRecorder))
	rr := httptest.NewRecorder()

	h.GetDataAttributes(rr, request(t, http.MethodGet, "/api/privacy/data-attributes", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var attrs api.DataAttributes
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &api.Envelope{Data: &attrs}))
	assert.Equal(t, privacysvc.TotalAttributes(), attrs.TotalAttributes)
	require.Len(t, attrs.Categories, 5)
	assert.Equal(t, "user", attrs.Categories[0].Key)
	assert.Equal(t, "Personal Information", attrs.Categories[0].Category)
}

func TestGetPermissions(t *testing.T) {
	mockStorage := new(mocks.Storage)
	mockStorage.On("GetPermissions", mock.Anything, "user1").Return(nil, storage.ErrNotFound)
	mockStorage.On("PutPermissions", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := newHandler(mockStorage, new(privacymocks.ConsentRecorder))
	rr := httptest.NewRecorder()

	h.GetPermissions(rr, request(t, http.MethodGet, "/api/privacy/permissions", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var perms api.Permissions
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &api.Envelope{Data: &perms}))
	assert.Equal(t, perms.TotalAttributes, perms.TotalAllowed)
	assert.True(t, perms.Permissions["user.income"])
	mockStorage.AssertExpectations(t)
}

func TestUpdatePermissions(t *testing.T) {
	t.Run("Records Consent", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetPermissions", mock.Anything, "user1").Return(&models.DataAccessPermissions{
			UserId:      "user1",
			Permissions: privacysvc.DefaultPermissions(),
		}, nil)
		mockStorage.On("PutPermissions", mock.Anything, mock.MatchedBy(func(d *models.DataAccessPermissions) bool {
			return !d.Permissions["user.income"]
		}), mock.Anything).Return(nil)

		recorder := new(privacymocks.ConsentRecorder)
		recorder.On("Replace", mock.Anything, mock.Anything, mock.MatchedBy(func(req consent.GrantRequest) bool {
			return req.ConsentType == privacysvc.PermissionsConsentType && len(req.DataTypes) == privacysvc.TotalAttributes()-1
		}), privacysvc.SupersededReason).Return(&models.ConsentRecord{Id: "c1"}, nil)

		h := newHandler(mockStorage, recorder)
		rr := httptest.NewRecorder()

		h.UpdatePermissions(rr, request(t, http.MethodPut, "/api/privacy/permissions", api.PermissionsUpdate{
			Permissions: []api.PermissionUpdate{{AttributeId: "user.income", Allowed: false}},
		}))

		assert.Equal(t, http.StatusOK, rr.Code)
		var perms api.Permissions
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &api.Envelope{Data: &perms}))
		assert.False(t, perms.Permissions["user.income"])
		assert.Equal(t, perms.TotalAttributes-1, perms.TotalAllowed)
		mockStorage.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("Unknown Attribute", func(t *testing.T) {
		h := newHandler(new(mocks.Storage), new(privacymocks.ConsentRecorder))
		rr := httptest.NewRecorder()

		h.UpdatePermissions(rr, request(t, http.MethodPut, "/api/privacy/permissions", api.PermissionsUpdate{
			Permissions: []api.PermissionUpdate{{AttributeId: "user.shoeSize", Allowed: true}},
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "user.shoeSize")
	})
}

func TestGetPrivacyScore(t *testing.T) {
	denied := privacysvc.DefaultPermissions()
	for _, id := range []string{"user.income", "user.creditScore", "user.address"} {
		denied[id] = false
	}
	mockStorage := new(mocks.Storage)
	mockStorage.On("GetPermissions", mock.Anything, "user1").Return(&models.DataAccessPermissions{UserId: "user1", Permissions: denied}, nil)

	h := newHandler(mockStorage, new(privacymocks.ConsentRecorder))
	rr := httptest.NewRecorder()

	refresh := true
	h.GetPrivacyScore(rr, request(t, http.MethodGet, "/api/privacy/score", nil), api.GetPrivacyScoreParams{Refresh: &refresh})

	assert.Equal(t, http.StatusOK, rr.Code)
	var score api.PrivacyScore
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &api.Envelope{Data: &score}))
	assert.Equal(t, 3, score.DeniedAttributes)
	assert.Equal(t, 3*100/privacysvc.TotalAttributes(), score.Score)
	assert.Equal(t, 100, score.MaxScore)
	assert.False(t, score.Cached)
	assert.Nil(t, score.CacheAge)
}
