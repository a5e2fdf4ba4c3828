package udpipe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

const sampleCoNLLU = "# sent_id = 1\n# text = Tá mé sásta\n" +
	"1\tTá\tbí\tVERB\t_\t_\t0\troot\t_\t_\n" +
	"2\tmé\tmé\tPRON\t_\t_\t1\tnsubj\t_\t_\n" +
	"3\tsásta\tsásta\tADJ\t_\t_\t1\txcomp\t_\tSpaceAfter=No\n" +
	"\n"

func TestParseCoNLLU(t *testing.T) {
	got := ParseCoNLLU(sampleCoNLLU + "short\tline\n")
	want := []Token{
		{Form: "Tá", Lemma: "bí"},
		{Form: "mé", Lemma: "mé"},
		{Form: "sásta", Lemma: "sásta"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCoNLLU() = %+v, want %+v", got, want)
	}
}

func TestLemmas(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/process" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("model") != "irish" || r.PostForm.Get("data") != "Tá mé sásta" {
			http.Error(w, "unexpected form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"irish","result":"` +
			"1\\tTá\\tbí\\t_\\n2\\tmé\\tmé\\t_\\n3\\tsásta\\tsásta\\t_\\n" + `"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "irish", time.Second)
	ctx := context.Background()

	lemmas, err := client.Lemmas(ctx, "  Tá mé sásta ")
	if err != nil {
		t.Fatalf("Lemmas() error = %v", err)
	}
	if want := []string{"bí", "mé", "sásta"}; !reflect.DeepEqual(lemmas, want) {
		t.Errorf("Lemmas() = %q, want %q", lemmas, want)
	}

	lemmas, err = client.Lemmas(ctx, "   ")
	if err != nil || len(lemmas) != 0 {
		t.Errorf("Lemmas(blank) = %q, %v", lemmas, err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "missing", time.Second)
	if _, err := client.Lemmas(context.Background(), "focal"); !errors.Is(err, ErrService) {
		t.Errorf("Lemmas() error = %v, want ErrService", err)
	}
}
