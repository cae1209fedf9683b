package drop

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Snapshot is the JSON-serializable image of the engine's persistent state:
// the full registry configuration, the consumed signed-mint digests, and the
// token-gated redemption counters.
type Snapshot struct {
	PublicStages     map[uint32]*DropStage        `json:"publicStages"`
	TokenGatedStages map[string]*DropStage        `json:"tokenGatedStages"`
	AllowListRoot    string                       `json:"allowListRoot"`
	Signers          map[string]*SignedMintBounds `json:"signers"`
	Payouts          []CreatorPayout              `json:"payouts"`
	AllowedSets      map[string][]string          `json:"allowedSets"`
	UsedDigests      []string                     `json:"usedDigests"`
	Redemptions      []RedemptionEntry            `json:"redemptions"`
}

// RedemptionEntry is one redeemed-count record in a snapshot.
type RedemptionEntry struct {
	CompanionToken string `json:"companionToken"`
	TokenID        string `json:"tokenId"`
	Redeemed       uint64 `json:"redeemed"`
}

func encodeAddr(addr [20]byte) string { return "0x" + hex.EncodeToString(addr[:]) }

func decodeAddr(s string) ([20]byte, error) {
	var addr [20]byte
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 20 {
		return addr, fmt.Errorf("drop: invalid address %q", s)
	}
	copy(addr[:], raw)
	return addr, nil
}

func encodeHash(h [32]byte) string { return "0x" + hex.EncodeToString(h[:]) }

func decodeHash(s string) ([32]byte, error) {
	var h [32]byte
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return h, fmt.Errorf("drop: invalid hash %q", s)
	}
	copy(h[:], raw)
	return h, nil
}

// Snapshot captures the engine's persistent state.
func (e *Engine) Snapshot() *Snapshot {
	snap := &Snapshot{
		PublicStages:     make(map[uint32]*DropStage, len(e.registry.publicStages)),
		TokenGatedStages: make(map[string]*DropStage, len(e.registry.tokenGated)),
		AllowListRoot:    encodeHash(e.registry.allowListRoot),
		Signers:          make(map[string]*SignedMintBounds, len(e.registry.signers)),
		Payouts:          clonePayouts(e.registry.payouts),
		AllowedSets:      make(map[string][]string, 3),
	}
	for index, stage := range e.registry.publicStages {
		snap.PublicStages[index] = stage.Clone()
	}
	for token, stage := range e.registry.tokenGated {
		snap.TokenGatedStages[encodeAddr(token)] = stage.Clone()
	}
	for signer, bounds := range e.registry.signers {
		snap.Signers[encodeAddr(signer)] = bounds.Clone()
	}
	for _, name := range []string{SetFeeRecipients, SetPayers, SetCallers} {
		set, _ := e.registry.allowedSet(name)
		members := make([]string, 0, set.Len())
		for _, member := range set.Members() {
			members = append(members, encodeAddr(member))
		}
		snap.AllowedSets[name] = members
	}
	for digest := range e.used.digests {
		snap.UsedDigests = append(snap.UsedDigests, encodeHash(digest))
	}
	for key, count := range e.redemptions.redeemed {
		snap.Redemptions = append(snap.Redemptions, RedemptionEntry{
			CompanionToken: encodeAddr(key.token),
			TokenID:        key.tokenID,
			Redeemed:       count,
		})
	}
	return snap
}

// Restore replaces the engine's persistent state with the snapshot's. No
// update events are emitted; restoration is not a configuration change.
func (e *Engine) Restore(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("drop: nil snapshot")
	}
	registry := NewRegistry()
	registry.emitter = e.registry.emitter
	for index, stage := range snap.PublicStages {
		registry.publicStages[index] = stage.Clone()
		registry.publicIndex.Add(index)
	}
	for key, stage := range snap.TokenGatedStages {
		token, err := decodeAddr(key)
		if err != nil {
			return err
		}
		registry.tokenGated[token] = stage.Clone()
		registry.tokenGatedIndex.Add(token)
	}
	root, err := decodeHash(snap.AllowListRoot)
	if err != nil {
		return err
	}
	registry.allowListRoot = root
	for key, bounds := range snap.Signers {
		signer, err := decodeAddr(key)
		if err != nil {
			return err
		}
		registry.signers[signer] = bounds.Clone()
		registry.signerIndex.Add(signer)
	}
	registry.payouts = clonePayouts(snap.Payouts)
	for name, members := range snap.AllowedSets {
		set, err := registry.allowedSet(name)
		if err != nil {
			return err
		}
		for _, raw := range members {
			member, err := decodeAddr(raw)
			if err != nil {
				return err
			}
			set.Add(member)
		}
	}
	used := newUsedDigestSet()
	for _, raw := range snap.UsedDigests {
		digest, err := decodeHash(raw)
		if err != nil {
			return err
		}
		used.MarkUsed(digest)
	}
	redemptions := NewRedemptionLedger()
	for _, entry := range snap.Redemptions {
		token, err := decodeAddr(entry.CompanionToken)
		if err != nil {
			return err
		}
		id, ok := new(big.Int).SetString(entry.TokenID, 10)
		if !ok {
			return fmt.Errorf("drop: invalid token id %q", entry.TokenID)
		}
		redemptions.Record(token, id, entry.Redeemed)
	}

	e.registry = registry
	e.used = used
	e.redemptions = redemptions
	return nil
}
