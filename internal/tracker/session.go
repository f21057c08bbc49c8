package tracker

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

const suffixLength = 9

// Session is the per-tab context: a lazily created session id and the
// sticky UTM snapshot.
type Session struct {
	storage Storage
	now     func() time.Time
	random  io.Reader

	mu sync.Mutex
}

// NewSession wraps storage. Sessions sharing storage share their id.
func NewSession(storage Storage) *Session {
	return &Session{
		storage: storage,
		now:     time.Now,
		random:  rand.Reader,
	}
}

// ID returns the session id, creating it on first use.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.storage.Get(SessionIDKey); ok && id != "" {
		return id
	}

	id := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + s.randomSuffix()
	s.storage.Set(SessionIDKey, id)
	return id
}

func (s *Session) randomSuffix() string {
	var buf [8]byte
	if _, err := io.ReadFull(s.random, buf[:]); err != nil {
		logging.L().Warn("random source failed, falling back to clock", "error", err)
		binary.BigEndian.PutUint64(buf[:], uint64(s.now().UnixNano()))
	}

	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(suffix) > suffixLength {
		return suffix[len(suffix)-suffixLength:]
	}
	return strings.Repeat("0", suffixLength-len(suffix)) + suffix
}

// CaptureAttribution stores the UTM parameters of u when at least one is
// present, replacing any earlier snapshot. Without UTM parameters the
// stored snapshot is left alone. It reports whether a snapshot was written.
func (s *Session) CaptureAttribution(u *url.URL) bool {
	if u == nil {
		return false
	}
	query := u.Query()
	attr := models.Attribution{
		Source:   query.Get("utm_source"),
		Medium:   query.Get("utm_medium"),
		Campaign: query.Get("utm_campaign"),
		Term:     query.Get("utm_term"),
		Content:  query.Get("utm_content"),
	}
	if attr.IsZero() {
		return false
	}

	data, err := json.Marshal(attr)
	if err != nil {
		logging.L().Warn("failed to encode attribution", "error", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Set(AttributionKey, string(data))
	return true
}

// Attribution returns the stored snapshot, or the zero value.
func (s *Session) Attribution() models.Attribution {
	s.mu.Lock()
	raw, ok := s.storage.Get(AttributionKey)
	s.mu.Unlock()
	if !ok || raw == "" {
		return models.Attribution{}
	}

	var attr models.Attribution
	if err := json.Unmarshal([]byte(raw), &attr); err != nil {
		logging.L().Warn("ignoring unreadable attribution snapshot", "error", err)
		return models.Attribution{}
	}
	return attr
}
