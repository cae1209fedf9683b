package drop

import (
	"bytes"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AllowListLeaf computes the Merkle leaf binding a minter to the stage
// parameters granted to it. The leaf is double-hashed so a proof node can
// never be confused for a leaf preimage, matching the off-chain tree builder.
func AllowListLeaf(minter [20]byte, stage *DropStage) ([32]byte, error) {
	var leaf [32]byte
	params, err := EncodeStageParams(stage)
	if err != nil {
		return leaf, err
	}
	inner := ethcrypto.Keccak256(minter[:], params)
	copy(leaf[:], ethcrypto.Keccak256(inner))
	return leaf, nil
}

// VerifyMerkleProof folds the proof nodes into the leaf using sorted-pair
// hashing and reports whether the result equals the root.
func VerifyMerkleProof(root, leaf [32]byte, proof [][32]byte) bool {
	computed := leaf
	for _, node := range proof {
		computed = hashSortedPair(computed, node)
	}
	return computed == root
}

func hashSortedPair(a, b [32]byte) [32]byte {
	var out [32]byte
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	copy(out[:], ethcrypto.Keccak256(a[:], b[:]))
	return out
}

// MerkleTree is a sorted-pair tree over precomputed leaves. It exists for the
// off-chain allow-list tooling and the engine's tests; verification on the
// mint path only ever uses VerifyMerkleProof.
type MerkleTree struct {
	layers [][][32]byte
}

// NewMerkleTree builds a tree over the given leaves. An odd node at the end of
// a layer is promoted unchanged.
func NewMerkleTree(leaves [][32]byte) *MerkleTree {
	if len(leaves) == 0 {
		return &MerkleTree{}
	}
	layer := make([][32]byte, len(leaves))
	copy(layer, leaves)
	layers := [][][32]byte{layer}
	for len(layer) > 1 {
		next := make([][32]byte, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, hashSortedPair(layer[i], layer[i+1]))
		}
		layers = append(layers, next)
		layer = next
	}
	return &MerkleTree{layers: layers}
}

// Root returns the tree root, or the zero hash for an empty tree.
func (t *MerkleTree) Root() [32]byte {
	var root [32]byte
	if t == nil || len(t.layers) == 0 {
		return root
	}
	top := t.layers[len(t.layers)-1]
	if len(top) == 0 {
		return root
	}
	return top[0]
}

// Proof returns the sibling path for the leaf at the given index.
func (t *MerkleTree) Proof(index int) [][32]byte {
	if t == nil || len(t.layers) == 0 || index < 0 || index >= len(t.layers[0]) {
		return nil
	}
	var proof [][32]byte
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := index ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		index /= 2
	}
	return proof
}
