package stats

import (
	"math"
	"sync"
	"time"

	"github.com/iamwavecut/hrbots/internal/highrise"
)

type (
	// LobbyEntry tracks a user currently in the room. It lives only in
	// memory and is gone once the user leaves.
	LobbyEntry struct {
		TimeJoined time.Time
		LastPos    highrise.Position
	}

	Lobby struct {
		mu      sync.Mutex
		entries map[string]*LobbyEntry
		now     func() time.Time
	}
)

var origin = highrise.Position{Facing: highrise.FacingFrontRight}

func NewLobby(now func() time.Time) *Lobby {
	if now == nil {
		now = time.Now
	}
	return &Lobby{
		entries: map[string]*LobbyEntry{},
		now:     now,
	}
}

// Join registers the user unless already present.
func (l *Lobby) Join(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entryLocked(userID)
}

// Leave removes the user and returns the whole seconds spent in the room.
// ok is false when the user was never seen joining or moving.
func (l *Lobby) Leave(userID string) (seconds int64, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[userID]
	if !ok {
		return 0, false
	}
	delete(l.entries, userID)
	return int64(math.RoundToEven(l.now().Sub(entry.TimeJoined).Seconds())), true
}

// Move records pos as the user's latest position and returns the rounded
// distance from the previous one. Unknown users start at the origin.
func (l *Lobby) Move(userID string, pos highrise.Position) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entryLocked(userID)
	distance := Distance(entry.LastPos, pos)
	entry.LastPos = pos
	return distance
}

// Len returns the number of users currently tracked.
func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Lobby) entryLocked(userID string) *LobbyEntry {
	entry, ok := l.entries[userID]
	if !ok {
		entry = &LobbyEntry{TimeJoined: l.now(), LastPos: origin}
		l.entries[userID] = entry
	}
	return entry
}

// Distance is the Euclidean distance between a and b, rounded half to even.
func Distance(a, b highrise.Position) int64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return int64(math.RoundToEven(math.Sqrt(dx*dx + dy*dy + dz*dz)))
}
