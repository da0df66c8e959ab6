package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterAndDeregister(t *testing.T) {
	var registered map[string]any
	var deregistered string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/agent/service/register":
			json.NewDecoder(r.Body).Decode(&registered)
		case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
			deregistered = strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	reg, err := NewRegistry(strings.TrimPrefix(srv.URL, "http://"), Registration{
		ID: "quizcraft-1", Name: "quizcraft", Address: "10.0.0.5", Port: 5000, Tags: []string{"api"},
	}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if err := reg.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered["Name"] != "quizcraft" || registered["ID"] != "quizcraft-1" {
		t.Errorf("registration = %v", registered)
	}
	check, _ := registered["Check"].(map[string]any)
	if check["HTTP"] != "http://10.0.0.5:5000/health" {
		t.Errorf("check = %v", check)
	}

	if err := reg.Deregister(); err != nil {
		t.Fatalf("Deregister: %v", err)
	}
	if deregistered != "quizcraft-1" {
		t.Errorf("deregistered %q", deregistered)
	}
}
