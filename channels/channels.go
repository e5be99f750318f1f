// Package channels merges node-reported channel lists and the claimable
// balance into the store. It does no fetching and no retries.
package channels

import (
	"slices"
	"sort"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/40acres/ettawallet/store"
	log "github.com/sirupsen/logrus"
)

type Update struct {
	Channels map[string]lightning.Channel
	OpenIDs  []string
}

// Merge overwrites channels by key and unions the open ids, keeping the
// order in which each id was first seen.
func Merge(state store.ChannelState, update Update) store.ChannelState {
	channels := make(map[string]lightning.Channel, len(state.Channels)+len(update.Channels))
	for id, ch := range state.Channels {
		channels[id] = ch
	}
	for id, ch := range update.Channels {
		channels[id] = ch
	}

	openIDs := slices.Clone(state.OpenChannelIDs)
	seen := make(map[string]struct{}, len(openIDs)+len(update.OpenIDs))
	for _, id := range openIDs {
		seen[id] = struct{}{}
	}
	for _, id := range update.OpenIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		openIDs = append(openIDs, id)
	}

	return store.ChannelState{
		Channels:       channels,
		OpenChannelIDs: openIDs,
	}
}

// OpenChannelIDs lists the open channels of a fetched map, sorted so that
// repeated syncs add ids in a stable order.
func OpenChannelIDs(channels map[string]lightning.Channel) []string {
	ids := make([]string, 0, len(channels))
	for id, ch := range channels {
		if ch.IsOpen {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	return ids
}

type Tracker struct {
	store *store.Store
}

func NewTracker(s *store.Store) *Tracker {
	return &Tracker{store: s}
}

func (t *Tracker) MergeChannelUpdate(channels map[string]lightning.Channel, openIDs []string) {
	t.store.MutateChannels(func(state store.ChannelState) store.ChannelState {
		return Merge(state, Update{Channels: channels, OpenIDs: openIDs})
	})
	log.WithField("channels", len(channels)).Debug("channel update merged")
}

func (t *Tracker) SetClaimableBalance(amount money.Money) {
	t.store.SetClaimableBalance(amount)
}
