package push_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdpush "github.com/matthope/webhook-push/cmd/push"
	"github.com/matthope/webhook-push/internal/delivery"
	"github.com/matthope/webhook-push/internal/push"
)

type hook struct {
	*httptest.Server
	signatures chan string
}

func newHook(t *testing.T, status int) *hook {
	t.Helper()

	h := &hook{signatures: make(chan string, 10)}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.signatures <- r.Header.Get("X-Hub-Signature-256")

		w.WriteHeader(status)
	}))

	t.Cleanup(h.Close)

	return h
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()

	for _, k := range []string{"WEBHOOK_SECRET", "WEBHOOK_URL", "WEBHOOK_DRY_RUN", "WEBHOOK_DEBUG", "WEBHOOK_PUSHGATEWAY_URL"} {
		t.Setenv(k, env[k])
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := cmdpush.NewCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestExecute(t *testing.T) {
	ok := newHook(t, http.StatusOK)
	notFound := newHook(t, http.StatusNotFound)

	tests := map[string]struct {
		env      map[string]string
		args     []string
		hook     *hook
		wantErr  error
		wantOut  string
		wantHits int
	}{
		"env ok": {
			env:      map[string]string{"WEBHOOK_SECRET": "k", "WEBHOOK_URL": ok.URL},
			hook:     ok,
			wantOut:  "push sent successfully\n",
			wantHits: 1,
		},
		"env not found": {
			env:      map[string]string{"WEBHOOK_SECRET": "k", "WEBHOOK_URL": notFound.URL},
			hook:     notFound,
			wantErr:  delivery.ErrUnexpectedStatus,
			wantOut:  "push failed with status 404 Not Found\n",
			wantHits: 1,
		},
		"secret unset": {
			env:     map[string]string{"WEBHOOK_URL": ok.URL},
			hook:    ok,
			wantErr: push.ErrMissingSecret,
			wantOut: "push failed: bad config: WEBHOOK_SECRET not set\n",
		},
		"url unset": {
			env:     map[string]string{"WEBHOOK_SECRET": "k"},
			hook:    ok,
			wantErr: push.ErrMissingURL,
			wantOut: "push failed: bad config: WEBHOOK_URL not set\n",
		},
		"flags override env": {
			env:      map[string]string{"WEBHOOK_SECRET": "other", "WEBHOOK_URL": notFound.URL},
			args:     []string{"--secret", "k", "--url", ok.URL},
			hook:     ok,
			wantOut:  "push sent successfully\n",
			wantHits: 1,
		},
		"dry run from env": {
			env:     map[string]string{"WEBHOOK_SECRET": "k", "WEBHOOK_URL": ok.URL, "WEBHOOK_DRY_RUN": "true"},
			hook:    ok,
			wantOut: "dry run: push not sent\n",
		},
	}
	for name, tt := range tests {
		tt := tt

		t.Run(name, func(t *testing.T) {
			setEnv(t, tt.env)

			out, err := execute(t, tt.args...)

			assert.Equal(t, tt.wantOut, out)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			require.Len(t, tt.hook.signatures, tt.wantHits)

			for i := 0; i < tt.wantHits; i++ {
				assert.Equal(t, "sha256=8bb990c40a7d61cb97597a942125025be50ac8beb74436e3735b98893a7f6620", <-tt.hook.signatures)
			}
		})
	}
}

func TestExecute_UnexpectedArgs(t *testing.T) {
	h := newHook(t, http.StatusOK)

	setEnv(t, map[string]string{"WEBHOOK_SECRET": "k", "WEBHOOK_URL": h.URL})

	_, err := execute(t, "extra")

	assert.Error(t, err)
	assert.Empty(t, h.signatures)
}
