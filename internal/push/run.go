package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oklog/run"
	"go.szostok.io/version"
	"go.uber.org/zap"

	"github.com/matthope/webhook-push/internal/delivery"
	"github.com/matthope/webhook-push/internal/metrics"
)

var ErrInterrupted = errors.New("interrupted")

// UserAgent mimics the agent GitHub sends its deliveries with.
func UserAgent() string {
	return "GitHub-Hookshot/" + version.Get().Version
}

// Run sends a single signed push event and writes a status line to out.
// A nil error means the target answered 200.
func Run(ctx context.Context, params *Params, logger *zap.Logger, out io.Writer) error {
	logger.Debug("starting", zap.Object("params", params))

	if err := params.IsValid(); err != nil {
		fmt.Fprintf(out, "push failed: %s\n", err)

		return err
	}

	recorder, err := metrics.New()
	if err != nil {
		return err
	}

	sendCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()

	var group run.Group

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(sigs)

	cancelSignal := make(chan struct{})

	group.Add(func() error {
		select {
		case sig := <-sigs:
			logger.Warn("received signal, aborting", zap.String("signal", sig.String()))

			return fmt.Errorf("%w: %s", ErrInterrupted, sig)
		case <-cancelSignal:
		}

		return nil
	}, func(_ error) {
		close(cancelSignal)
	})

	sender := &delivery.Sender{
		Client:    http.DefaultClient,
		UserAgent: UserAgent(),
		DryRun:    params.DryRun,
		Logger:    logger,
	}

	var (
		result  delivery.Result
		sendErr error
	)

	group.Add(func() error {
		result, sendErr = sender.Send(sendCtx, delivery.Request{URL: params.URL, Secret: []byte(params.Secret)})

		return sendErr
	}, func(_ error) {
		shutdown()
	})

	if err := group.Run(); err != nil {
		logger.Debug("group stopped", zap.Error(err))
	}

	report(out, result, sendErr, params.DryRun)

	if sendErr != nil {
		logger.Error("error sending webhook", zap.Error(sendErr), zap.String("delivery", result.DeliveryID))
	} else if !params.DryRun {
		logger.Info("webhook delivered", zap.String("delivery", result.DeliveryID), zap.Duration("duration", result.Duration))
	}

	if params.DryRun {
		return sendErr
	}

	recorder.Observe(result.StatusCode, result.Duration, sendErr)

	if params.PushgatewayURL != "" {
		if err := recorder.Push(params.PushgatewayURL); err != nil {
			logger.Warn("failed to push metrics", zap.Error(err), zap.String("pushgateway", delivery.RedactURL(params.PushgatewayURL)))
		}
	}

	return sendErr
}

func report(out io.Writer, result delivery.Result, err error, dryRun bool) {
	switch {
	case err == nil && dryRun:
		fmt.Fprintln(out, "dry run: push not sent")
	case err == nil:
		fmt.Fprintln(out, "push sent successfully")
	case errors.Is(err, delivery.ErrUnexpectedStatus):
		status := strings.TrimSpace(fmt.Sprintf("%d %s", result.StatusCode, http.StatusText(result.StatusCode)))
		fmt.Fprintf(out, "push failed with status %s\n", status)
	default:
		fmt.Fprintf(out, "push failed: %s\n", err)
	}
}
