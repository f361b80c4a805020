package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func callbackRequest(query string) *http.Request {
	return httptest.NewRequest("GET", "/callback?"+query, nil)
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Rejects State Mismatch", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "expected-state")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, callbackRequest("state=forged&code=abc"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result for state mismatch")
		}
	})

	t.Run("Reports Denied Authorization", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "s")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, callbackRequest("state=s&error=access_denied&error_description=user+declined"))

		result := <-handler.Result()
		if result.Error() == nil {
			t.Fatal("expected error result for denied authorization")
		}
		if !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected provider error in result, got %v", result.Error())
		}
	})

	t.Run("Exchanges Code And Delivers Token", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok","token_type":"Bearer"}`))
		}))
		defer tokenSrv.Close()

		config := &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenSrv.URL},
		}
		handler := NewOAuthHandler(config, "s")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, callbackRequest("state=s&code=abc"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization complete") {
			t.Error("expected success page in response body")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "tok" {
			t.Errorf("unexpected token: %+v", result.Token)
		}

		t.Run("Second Callback Is Rejected", func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, callbackRequest("state=s&code=abc"))
			if rec.Code != http.StatusConflict {
				t.Errorf("expected status 409, got %d", rec.Code)
			}
		})
	})
}
