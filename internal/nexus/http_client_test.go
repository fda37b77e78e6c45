package nexus_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/odense-rpa/grant-reminder/internal/grant"
	"github.com/odense-rpa/grant-reminder/internal/nexus"
)

func newTestClient(t *testing.T, handler http.Handler) *nexus.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return nexus.New(srv.URL, srv.Client(), 100)
}

func TestCitizen(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/citizens/010101-1234" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(grant.Citizen{ID: "c-1", CPR: "010101-1234", FullName: "Test Testesen"})
	}))

	citizen, err := client.Citizen(context.Background(), "010101-1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if citizen == nil || citizen.ID != "c-1" {
		t.Fatalf("unexpected citizen: %+v", citizen)
	}
}

func TestCitizen_NotFoundIsNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	citizen, err := client.Citizen(context.Background(), "010101-1234")
	if err != nil {
		t.Fatalf("expected soft absence, got error: %v", err)
	}
	if citizen != nil {
		t.Fatalf("expected nil citizen, got %+v", citizen)
	}
}

func TestCitizen_ServerErrorIsError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := client.Citizen(context.Background(), "010101-1234"); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestGrantFieldValues_ExtractsSupplier(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/grants/42/fields" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "pris", "value": "1200"},
			{"name": "Leverandør", "value": "Acme ApS"},
		})
	}))

	values, err := client.GrantFieldValues(context.Background(), &grant.Grant{ID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values.Supplier != "Acme ApS" {
		t.Fatalf("expected supplier Acme ApS, got %q", values.Supplier)
	}
}

func TestTasks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]grant.Task{
			{ID: 7, Type: "Indsatser til økonomi - voksne", WorkflowState: "Afsluttet", LastStateChangeDate: "2024-01-01T12:00:00+01:00"},
		})
	}))

	tasks, err := client.Tasks(context.Background(), &grant.Grant{ID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 7 {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestCreateTask(t *testing.T) {
	var posted map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/grants/42/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	day := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	err := client.CreateTask(context.Background(), &grant.Grant{ID: 42}, grant.NewTask{
		Type:           "Indsatser til økonomi - voksne",
		Title:          "Påmindelse om afregning af indsats",
		ResponsibleOrg: "Regnskab BSF",
		StartDate:      day,
		DueDate:        day,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if posted["type"] != "Indsatser til økonomi - voksne" {
		t.Fatalf("unexpected task type: %v", posted["type"])
	}
	if posted["startDate"] != "2024-06-01" || posted["dueDate"] != "2024-06-01" {
		t.Fatalf("expected plain calendar dates, got %v / %v", posted["startDate"], posted["dueDate"])
	}
	if _, ok := posted["responsibleUser"]; ok {
		t.Fatal("expected no responsible user on the payload")
	}
}

func TestCreateTask_UnexpectedStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := client.CreateTask(context.Background(), &grant.Grant{ID: 42}, grant.NewTask{})
	if err == nil {
		t.Fatal("expected an error for a non-201 response")
	}
}
