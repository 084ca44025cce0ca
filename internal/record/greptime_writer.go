package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"treadlink/internal/telemetry"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeWriter writes session samples to GreptimeDB via the ingester client.
type GreptimeWriter struct {
	client greptimeClient
	table  string
	log    *slog.Logger
}

// NewGreptimeWriter creates a GreptimeDB writer. The endpoint is "host" or
// "host:port"; tableName falls back to telemetry.SampleTableName when empty.
func NewGreptimeWriter(endpoint, database, tableName string, log *slog.Logger) (*GreptimeWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	cfg := greptime.NewConfig(endpoint)
	if err == nil {
		cfg = greptime.NewConfig(host)
		if port, perr := strconv.Atoi(portStr); perr == nil {
			cfg = cfg.WithPort(port)
		}
	}
	cfg = cfg.WithDatabase(database)

	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if tableName == "" {
		tableName = telemetry.SampleTableName
	}
	return &GreptimeWriter{client: client, table: tableName, log: log}, nil
}

// WriteSample inserts a single sample row.
func (w *GreptimeWriter) WriteSample(row telemetry.SampleRow) error {
	return w.WriteSamples([]telemetry.SampleRow{row})
}

// WriteSamples inserts multiple sample rows.
func (w *GreptimeWriter) WriteSamples(rows []telemetry.SampleRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("speed_kmh", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("incline_pct", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("linked", types.BOOLEAN); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("landmarks", types.JSON); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		landmarks, err := json.Marshal(r.Landmarks)
		if err != nil {
			return err
		}
		if err := tbl.AddRow(r.SessionID, r.Speed, r.Incline, r.Linked, string(landmarks), r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.log.Error("greptime write failed", "err", err)
		return err
	}
	w.log.Debug("wrote samples", "count", len(rows), "table", w.table)
	return nil
}
