// Package mediagroup collects the photos of a Telegram album, which arrive
// as separate updates, into one group.
package mediagroup

import (
	"sort"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	LanguageCode string
	MediaGroupID string
	MessageID    int
	Caption      string
	FileID       string
}

// Group is a flushed album. FileIDs are in message order.
type Group struct {
	ChatID       int64
	UserID       int64
	LanguageCode string
	Caption      string
	FileIDs      []string
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	groups   map[groupKey]*pendingGroup
}

type groupKey struct {
	ChatID       int64
	MediaGroupID string
}

type pendingGroup struct {
	group Group
	items []Item
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		groups:   make(map[groupKey]*pendingGroup),
	}
}

// Add buffers one album photo. The group is flushed once no new photo has
// arrived for the debounce interval.
func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := groupKey{ChatID: item.ChatID, MediaGroupID: item.MediaGroupID}

	a.mu.Lock()
	defer a.mu.Unlock()

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{
			group: Group{
				ChatID:       item.ChatID,
				UserID:       item.UserID,
				LanguageCode: item.LanguageCode,
			},
		}
		a.groups[key] = pg
	}
	pg.items = append(pg.items, item)
	if item.Caption != "" {
		pg.group.Caption = item.Caption
	}

	if pg.timer != nil {
		pg.timer.Stop()
	}
	pg.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

// Pending reports how many albums are still being collected.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

func (a *Aggregator) flush(key groupKey) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	onFlush := a.onFlush
	a.mu.Unlock()

	sort.SliceStable(pg.items, func(i, j int) bool {
		return pg.items[i].MessageID < pg.items[j].MessageID
	})
	group := pg.group
	group.FileIDs = make([]string, 0, len(pg.items))
	for _, item := range pg.items {
		group.FileIDs = append(group.FileIDs, item.FileID)
	}

	if onFlush != nil {
		onFlush(group)
	}
}
