package drop

import "testing"

func TestMerkleTreeVerify(t *testing.T) {
	stage := auctionStage(10, 10, 0, 100)
	stage.StageIndex = 2
	minters := [][20]byte{testAddr(0x01), testAddr(0x02), testAddr(0x03), testAddr(0x04), testAddr(0x05)}

	leaves := make([][32]byte, 0, len(minters))
	for _, minter := range minters {
		leaf, err := AllowListLeaf(minter, stage)
		if err != nil {
			t.Fatal(err)
		}
		leaves = append(leaves, leaf)
	}
	tree := NewMerkleTree(leaves)
	root := tree.Root()

	for i := range minters {
		if !VerifyMerkleProof(root, leaves[i], tree.Proof(i)) {
			t.Fatalf("proof for leaf %d did not verify", i)
		}
	}
}

func TestMerkleProofRejectsSubstitutedMinter(t *testing.T) {
	stage := auctionStage(10, 10, 0, 100)
	stage.StageIndex = 2
	minterA, minterB := testAddr(0x01), testAddr(0x02)

	leafA, err := AllowListLeaf(minterA, stage)
	if err != nil {
		t.Fatal(err)
	}
	other, err := AllowListLeaf(testAddr(0x07), stage)
	if err != nil {
		t.Fatal(err)
	}
	tree := NewMerkleTree([][32]byte{leafA, other})
	proofA := tree.Proof(0)

	if !VerifyMerkleProof(tree.Root(), leafA, proofA) {
		t.Fatalf("valid proof rejected")
	}
	leafB, err := AllowListLeaf(minterB, stage)
	if err != nil {
		t.Fatal(err)
	}
	if VerifyMerkleProof(tree.Root(), leafB, proofA) {
		t.Fatalf("proof verified for a substituted minter")
	}
}

func TestMerkleLeafBindsStageParams(t *testing.T) {
	minter := testAddr(0x01)
	stage := auctionStage(10, 10, 0, 100)
	stage.StageIndex = 2
	cheaper := stage.Clone()
	cheaper.FeeBps = 0
	cheaper.MaxPerWallet = 1_000_000

	leaf, err := AllowListLeaf(minter, stage)
	if err != nil {
		t.Fatal(err)
	}
	tampered, err := AllowListLeaf(minter, cheaper)
	if err != nil {
		t.Fatal(err)
	}
	if leaf == tampered {
		t.Fatalf("leaf does not bind stage parameters")
	}
}

func TestMerkleSingleLeafTree(t *testing.T) {
	leaf := [32]byte{0x42}
	tree := NewMerkleTree([][32]byte{leaf})
	if tree.Root() != leaf {
		t.Fatalf("single-leaf root should equal the leaf")
	}
	if !VerifyMerkleProof(tree.Root(), leaf, tree.Proof(0)) {
		t.Fatalf("empty proof for single leaf rejected")
	}
}
