package promote

import (
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix is the directory every permanent document lives under.
const KeyPrefix = "documents/"

const ownerPrefixLen = 8

// Namer hands out collision-resistant storage keys of the form
// documents/<unix-millis>-<owner[:8]>-<random><ext>. The millisecond stamp
// never repeats within a process, even when the wall clock stalls or steps back.
type Namer struct {
	last atomic.Int64
	now  func() time.Time
}

// NewNamer returns a Namer reading the wall clock.
func NewNamer() *Namer {
	return &Namer{now: time.Now}
}

func (n *Namer) stamp() int64 {
	now := n.now().UnixMilli()
	for {
		prev := n.last.Load()
		next := max(now, prev+1)
		if n.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Key builds a new key for ownerID keeping the extension of originalName.
func (n *Namer) Key(ownerID, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	if !safeExt(ext) {
		ext = ""
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d-%s-%s%s", KeyPrefix, n.stamp(), ownerFragment(ownerID), suffix, ext)
}

func ownerFragment(ownerID string) string {
	var b strings.Builder
	for _, r := range ownerID {
		if b.Len() == ownerPrefixLen {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "anon"
	}
	return b.String()
}

func safeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
