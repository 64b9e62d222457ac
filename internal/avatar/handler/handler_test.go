package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"contactbook/internal/avatar/handler/mocks"
	"contactbook/internal/avatar/models"
	id "contactbook/pkg/domain"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/testutil"
)

type AvatarHandlerSuite struct {
	suite.Suite
	mockService *mocks.MockService
	router      chi.Router
	userID      id.UserID
}

func TestAvatarHandlerSuite(t *testing.T) {
	suite.Run(t, new(AvatarHandlerSuite))
}

func (s *AvatarHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)), 1024).Register(s.router)
	s.userID = id.NewUserID()
}

func (s *AvatarHandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.WithAccount(req, s.userID, "ann@example.com"))
}

func (s *AvatarHandlerSuite) snapshot(url string) *models.Snapshot {
	return &models.Snapshot{
		Version:   models.SnapshotVersion,
		ID:        s.userID.String(),
		Email:     "ann@example.com",
		Username:  "Ann Lee",
		AvatarURL: url,
	}
}

func (s *AvatarHandlerSuite) TestMe() {
	s.mockService.EXPECT().Me(gomock.Any()).Return(s.snapshot("https://img/a.png?v=1"), nil)

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/users/me"))
	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[UserResponse](s.T(), rr)
	s.Equal("https://img/a.png?v=1", resp.AvatarURL)
	s.Equal(s.userID.String(), resp.ID)
}

func (s *AvatarHandlerSuite) TestUpdateAvatar() {
	s.Run("uploads the file field", func() {
		s.mockService.EXPECT().UpdateAvatar(gomock.Any(), []byte("png-bytes")).Return(s.snapshot("https://img/b.png?v=2"), nil)

		rr := s.do(testutil.NewMultipartRequest(s.T(), http.MethodPatch, "/users/avatar", "file", []byte("png-bytes")))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "avatar_url", "https://img/b.png?v=2")
	})

	s.Run("missing file field is a validation error", func() {
		rr := s.do(testutil.NewMultipartRequest(s.T(), http.MethodPatch, "/users/avatar", "image", []byte("png-bytes")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})

	s.Run("non-multipart body is a bad request", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/users/avatar", map[string]string{"file": "x"})
		rr := s.do(req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("oversized upload is rejected", func() {
		rr := s.do(testutil.NewMultipartRequest(s.T(), http.MethodPatch, "/users/avatar", "file", bytes.Repeat([]byte("a"), 4096)))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusRequestEntityTooLarge, "payload_too_large")
	})

	s.Run("service validation errors pass through", func() {
		s.mockService.EXPECT().UpdateAvatar(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "file is not a supported image"))

		rr := s.do(testutil.NewMultipartRequest(s.T(), http.MethodPatch, "/users/avatar", "file", []byte("txt")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})

	s.Run("hosting not configured is unavailable", func() {
		s.mockService.EXPECT().UpdateAvatar(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "avatar uploads are not configured"))

		rr := s.do(testutil.NewMultipartRequest(s.T(), http.MethodPatch, "/users/avatar", "file", []byte("img")))
		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	})
}
