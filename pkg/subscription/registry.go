package subscription

import (
	"net/netip"
	"sort"
	"sync"
	"sync/atomic"
)

// Endpoint identifies a subscriber by its exact address and port.
type Endpoint = netip.AddrPort

// channelSet holds the subscribers of a single channel.
// Once a set becomes empty it is marked removed and unlinked from the
// registry; a removed set is never written to again.
type channelSet struct {
	mu      sync.Mutex
	members map[Endpoint]struct{}
	removed bool
}

// Registry maps channel names to the endpoints subscribed to them.
//
// Operations on different channels proceed independently. Operations on the
// same channel are serialized by that channel's lock. There is no lock that
// spans the whole table.
//
// A channel is present in the registry if and only if it has at least one
// subscriber.
type Registry struct {
	channels sync.Map // string -> *channelSet
	count    atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe adds ep to channel. Subscribing an endpoint that is already
// present is a no-op. It reports whether the endpoint was newly added.
func (r *Registry) Subscribe(channel string, ep Endpoint) bool {
	for {
		v, _ := r.channels.LoadOrStore(channel, &channelSet{members: make(map[Endpoint]struct{})})
		set := v.(*channelSet)

		set.mu.Lock()
		if set.removed {
			// Lost a race with the last Unsubscribe; the set was unlinked
			// after we loaded it. Retry against a fresh one.
			set.mu.Unlock()
			continue
		}
		if _, exists := set.members[ep]; exists {
			set.mu.Unlock()
			return false
		}
		if len(set.members) == 0 {
			r.count.Add(1)
		}
		set.members[ep] = struct{}{}
		set.mu.Unlock()
		return true
	}
}

// Unsubscribe removes ep from channel. Removing a non-member, or removing from
// a channel that does not exist, is a no-op. If the channel becomes empty it
// is deleted before Unsubscribe returns. It reports whether ep was removed.
func (r *Registry) Unsubscribe(channel string, ep Endpoint) bool {
	v, ok := r.channels.Load(channel)
	if !ok {
		return false
	}
	set := v.(*channelSet)

	set.mu.Lock()
	defer set.mu.Unlock()

	if set.removed {
		return false
	}
	if _, exists := set.members[ep]; !exists {
		return false
	}
	delete(set.members, ep)
	if len(set.members) == 0 {
		set.removed = true
		r.channels.CompareAndDelete(channel, set)
		r.count.Add(-1)
	}
	return true
}

// Subscribers returns a copy of the endpoints subscribed to channel, or nil
// if the channel does not exist. The result is owned by the caller.
func (r *Registry) Subscribers(channel string) []Endpoint {
	v, ok := r.channels.Load(channel)
	if !ok {
		return nil
	}
	set := v.(*channelSet)

	set.mu.Lock()
	defer set.mu.Unlock()

	if set.removed || len(set.members) == 0 {
		return nil
	}
	out := make([]Endpoint, 0, len(set.members))
	for ep := range set.members {
		out = append(out, ep)
	}
	return out
}

// Has reports whether channel currently has any subscribers.
func (r *Registry) Has(channel string) bool {
	v, ok := r.channels.Load(channel)
	if !ok {
		return false
	}
	set := v.(*channelSet)

	set.mu.Lock()
	defer set.mu.Unlock()
	return !set.removed && len(set.members) > 0
}

// Channels returns the names of all channels with at least one subscriber,
// sorted. Concurrent mutations may or may not be reflected.
func (r *Registry) Channels() []string {
	var names []string
	r.channels.Range(func(key, value any) bool {
		set := value.(*channelSet)
		set.mu.Lock()
		live := !set.removed && len(set.members) > 0
		set.mu.Unlock()
		if live {
			names = append(names, key.(string))
		}
		return true
	})
	sort.Strings(names)
	return names
}

// Len returns the number of channels with at least one subscriber.
func (r *Registry) Len() int {
	return int(r.count.Load())
}
