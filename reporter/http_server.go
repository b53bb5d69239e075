// This is a http type of reporter.
// It fetches data from internal state/statedb
// and publishes on the http routes.

package reporter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/state"
)

const (
	ROUTE_HELLO      = "/hello"
	ROUTE_STATUS     = "/status"
	ROUTE_SETTLEMENT = "/settlement"
	ROUTE_METRICS    = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// StateReader is implemented by state.StateDB.
type StateReader interface {
	Cursors(ctx context.Context) (map[string]uint64, error)
	GetSettlement(ctx context.Context, sourceChain, sourceRef string) (*state.Settlement, bool, error)
}

// MonitorStatus is implemented by chainsync.Monitor.
type MonitorStatus interface {
	Identity() string
	Cursor() uint64
}

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream data sources
	statedb  StateReader
	monitors []MonitorStatus
}

func NewHttpReporter(serverIP string, serverPort string, statedb StateReader, monitors ...MonitorStatus) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		statedb:    statedb,
		monitors:   monitors,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_STATUS, h.Status)
	router.GET(ROUTE_SETTLEMENT, h.Settlement)
	router.GET(ROUTE_METRICS, gin.WrapH(promhttp.Handler()))

	return router
}

// Run serves until ctx is cancelled.
func (h *HttpReporter) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    h.serverIP + ":" + h.serverPort,
		Handler: h.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", srv.Addr).Info("http reporter listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Status publishes the persisted cursors and the live cursor of each monitor.
func (h *HttpReporter) Status(c *gin.Context) {
	cursors, err := h.statedb.Cursors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	live := make(map[string]uint64, len(h.monitors))
	for _, m := range h.monitors {
		live[m.Identity()] = m.Cursor()
	}

	c.JSON(http.StatusOK, gin.H{
		"cursors":  cursors,
		"monitors": live,
	})
}

// Settlement looks up what was done for a source occurrence.
func (h *HttpReporter) Settlement(c *gin.Context) {
	source := c.Query("source")
	ref := c.Query("ref")

	if source == "" || ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both source and ref must be provided"})
		return
	}

	s, ok, err := h.statedb.GetSettlement(c.Request.Context(), source, ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No settlement found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"source":    s.SourceChain,
		"ref":       s.SourceRef,
		"kind":      s.Kind,
		"targetTx":  s.TargetTx,
		"recipient": s.Recipient,
		"amount":    s.Amount.String(),
		"createdAt": s.CreatedAt.Unix(),
	}})
}
