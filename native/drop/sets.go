package drop

import "math/big"

// indexedSet is an enumerable membership set: a lookup table of key to dense
// slot plus a dense member list. Membership tests and inserts are O(1);
// removal swaps the last member into the vacated slot and truncates, so
// enumeration order is not stable across removals.
type indexedSet[K comparable] struct {
	slots   map[K]int
	members []K
}

func newIndexedSet[K comparable]() *indexedSet[K] {
	return &indexedSet[K]{slots: make(map[K]int)}
}

func (s *indexedSet[K]) Contains(key K) bool {
	if s == nil {
		return false
	}
	_, ok := s.slots[key]
	return ok
}

func (s *indexedSet[K]) Add(key K) bool {
	if _, ok := s.slots[key]; ok {
		return false
	}
	s.slots[key] = len(s.members)
	s.members = append(s.members, key)
	return true
}

func (s *indexedSet[K]) Remove(key K) bool {
	slot, ok := s.slots[key]
	if !ok {
		return false
	}
	last := len(s.members) - 1
	if slot != last {
		moved := s.members[last]
		s.members[slot] = moved
		s.slots[moved] = slot
	}
	s.members = s.members[:last]
	delete(s.slots, key)
	return true
}

func (s *indexedSet[K]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Members returns a copy of the member list.
func (s *indexedSet[K]) Members() []K {
	if s == nil || len(s.members) == 0 {
		return nil
	}
	out := make([]K, len(s.members))
	copy(out, s.members)
	return out
}

// usedDigestSet records consumed signed-mint digests. Membership is one-way:
// a digest is inserted by a committed signed mint and never removed.
type usedDigestSet struct {
	digests map[[32]byte]struct{}
}

func newUsedDigestSet() *usedDigestSet {
	return &usedDigestSet{digests: make(map[[32]byte]struct{})}
}

func (s *usedDigestSet) Used(digest [32]byte) bool {
	if s == nil {
		return false
	}
	_, ok := s.digests[digest]
	return ok
}

func (s *usedDigestSet) MarkUsed(digest [32]byte) {
	s.digests[digest] = struct{}{}
}

type redemptionKey struct {
	token   [20]byte
	tokenID string
}

// RedemptionLedger tracks how many mints each companion token has redeemed in
// a token-gated stage. Counters only increase.
type RedemptionLedger struct {
	redeemed map[redemptionKey]uint64
}

// NewRedemptionLedger returns an empty ledger.
func NewRedemptionLedger() *RedemptionLedger {
	return &RedemptionLedger{redeemed: make(map[redemptionKey]uint64)}
}

// Redeemed returns the consumed redemption count for a companion token id.
func (l *RedemptionLedger) Redeemed(token [20]byte, tokenID *big.Int) uint64 {
	if l == nil || tokenID == nil {
		return 0
	}
	return l.redeemed[redemptionKey{token: token, tokenID: tokenID.String()}]
}

// Record accumulates a redemption against a companion token id.
func (l *RedemptionLedger) Record(token [20]byte, tokenID *big.Int, amount uint64) {
	if l == nil || tokenID == nil {
		return
	}
	l.redeemed[redemptionKey{token: token, tokenID: tokenID.String()}] += amount
}
