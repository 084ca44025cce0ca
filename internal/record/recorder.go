// Session recorder: pairs pose frames with the machine state at capture time
package record

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"treadlink/internal/telemetry"
)

// Recorder is a passive sink: the pose collaborator hands it landmark frames
// at arbitrary times and each frame is written out together with the current
// telemetry snapshot. It never drives or blocks on the pose collaborator.
type Recorder struct {
	store  *telemetry.Store
	writer SampleWriter
	log    *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	sessionID string
	captured  int
}

// NewRecorder starts a new recording session with a fresh session ID.
func NewRecorder(store *telemetry.Store, writer SampleWriter, log *slog.Logger) *Recorder {
	r := &Recorder{
		store:     store,
		writer:    writer,
		log:       log,
		now:       time.Now,
		sessionID: uuid.New().String(),
	}
	log.Info("recording session started", "session_id", r.sessionID)
	return r
}

// SessionID returns the current session identifier.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// Samples returns how many frames have been captured this session.
func (r *Recorder) Samples() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.captured
}

// Capture records one pose frame. A nil landmark list is a valid sample
// (no body in view); the telemetry snapshot is attached either way.
func (r *Recorder) Capture(landmarks []telemetry.Landmark) error {
	st := r.store.Snapshot()
	r.mu.Lock()
	row := telemetry.SampleRow{
		SessionID: r.sessionID,
		Speed:     st.Speed,
		Incline:   st.Incline,
		Linked:    st.Linked,
		Landmarks: landmarks,
		Timestamp: r.now().UTC(),
	}
	r.captured++
	r.mu.Unlock()

	if err := r.writer.WriteSample(row); err != nil {
		r.log.Error("sample write failed", "session_id", row.SessionID, "err", err)
		return err
	}
	return nil
}
