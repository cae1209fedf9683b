package drop

import (
	"encoding/binary"
	"errors"
	"math/big"
	"testing"
)

var testDropToken = testAddr(0xdd)

func validClaim(amount uint64) []ClaimItem {
	return []ClaimItem{{Token: testDropToken, Amount: amount}}
}

func TestDecodeRejectsBadClaim(t *testing.T) {
	payload := EncodeOpenPayload(testAddr(0x01), testAddr(0x02), 0)
	cases := map[string][]ClaimItem{
		"empty":       nil,
		"two entries": {{Token: testDropToken, Amount: 1}, {Token: testDropToken, Amount: 1}},
		"wrong token": {{Token: testAddr(0x99), Amount: 1}},
		"zero amount": {{Token: testDropToken, Amount: 0}},
	}
	for name, claim := range cases {
		if _, err := DecodeMintPayload(claim, payload, testDropToken, testAddr(0x02)); !errors.Is(err, ErrInvalidClaim) {
			t.Fatalf("%s: expected ErrInvalidClaim, got %v", name, err)
		}
	}
}

func TestDecodeRejectsBadTags(t *testing.T) {
	payload := EncodeOpenPayload(testAddr(0x01), testAddr(0x02), 0)

	bad := append([]byte(nil), payload...)
	bad[0] = 0x01
	if _, err := DecodeMintPayload(validClaim(1), bad, testDropToken, testAddr(0x02)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}

	bad = append([]byte(nil), payload...)
	bad[1] = 0x04
	if _, err := DecodeMintPayload(validClaim(1), bad, testDropToken, testAddr(0x02)); !errors.Is(err, ErrUnsupportedSubstandard) {
		t.Fatalf("expected ErrUnsupportedSubstandard, got %v", err)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	payload := EncodeOpenPayload(testAddr(0x01), testAddr(0x02), 7)
	for _, cut := range []int{1, 2, 21, 41, 43} {
		if _, err := DecodeMintPayload(validClaim(1), payload[:cut], testDropToken, testAddr(0x02)); !errors.Is(err, ErrPayloadTruncated) {
			t.Fatalf("cut at %d: expected ErrPayloadTruncated, got %v", cut, err)
		}
	}
}

func TestDecodeOpenPayload(t *testing.T) {
	feeRecipient, minter := testAddr(0x01), testAddr(0x02)
	payload := EncodeOpenPayload(feeRecipient, minter, 7)
	intent, err := DecodeMintPayload(validClaim(3), payload, testDropToken, testAddr(0x03))
	if err != nil {
		t.Fatal(err)
	}
	if intent.Substandard != SubstandardOpen || intent.StageIndex != 7 {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if intent.FeeRecipient != feeRecipient || intent.Minter != minter {
		t.Fatalf("addresses not decoded: %+v", intent)
	}
}

func TestDecodeZeroMinterDefaultsToFulfiller(t *testing.T) {
	fulfiller := testAddr(0x0f)
	payload := EncodeOpenPayload(testAddr(0x01), zeroAddress, 0)
	intent, err := DecodeMintPayload(validClaim(1), payload, testDropToken, fulfiller)
	if err != nil {
		t.Fatal(err)
	}
	if intent.Minter != fulfiller {
		t.Fatalf("zero minter should default to fulfiller, got %x", intent.Minter)
	}
}

func TestDecodeAllowListPayloadRoundTrip(t *testing.T) {
	stage := auctionStage(5, 5, 0, 100)
	stage.StageIndex = 2
	stage.FeeBps = 250
	stage.RestrictFeeRecipients = true
	proof := [][32]byte{{0x01}, {0x02}}
	payload, err := EncodeAllowListPayload(testAddr(0x01), testAddr(0x02), stage, proof)
	if err != nil {
		t.Fatal(err)
	}
	intent, err := DecodeMintPayload(validClaim(1), payload, testDropToken, testAddr(0x02))
	if err != nil {
		t.Fatal(err)
	}
	if intent.Substandard != SubstandardAllowList {
		t.Fatalf("unexpected substandard %v", intent.Substandard)
	}
	if intent.Stage.FeeBps != 250 || !intent.Stage.RestrictFeeRecipients || intent.Stage.StageIndex != 2 {
		t.Fatalf("stage params not round-tripped: %+v", intent.Stage)
	}
	if intent.Stage.Window.StartPrice.Int64() != 5 || intent.Stage.Window.EndTime != 100 {
		t.Fatalf("price window not round-tripped: %+v", intent.Stage.Window)
	}
	if len(intent.Proof) != 2 || intent.Proof[0] != proof[0] || intent.Proof[1] != proof[1] {
		t.Fatalf("proof not round-tripped: %v", intent.Proof)
	}

	// Ragged proof bytes are truncation.
	if _, err := DecodeMintPayload(validClaim(1), payload[:len(payload)-5], testDropToken, testAddr(0x02)); !errors.Is(err, ErrPayloadTruncated) {
		t.Fatalf("expected ErrPayloadTruncated, got %v", err)
	}
}

func TestDecodeTokenGatedPayloadRoundTrip(t *testing.T) {
	companion := testAddr(0x33)
	ids := []*big.Int{big.NewInt(7), big.NewInt(9)}
	amounts := []uint64{2, 3}
	payload, err := EncodeTokenGatedPayload(testAddr(0x01), testAddr(0x02), companion, ids, amounts)
	if err != nil {
		t.Fatal(err)
	}
	intent, err := DecodeMintPayload(validClaim(5), payload, testDropToken, testAddr(0x02))
	if err != nil {
		t.Fatal(err)
	}
	if intent.CompanionToken != companion {
		t.Fatalf("companion token not decoded")
	}
	if len(intent.TokenIDs) != 2 || intent.TokenIDs[0].Int64() != 7 || intent.TokenIDs[1].Int64() != 9 {
		t.Fatalf("token ids not round-tripped: %v", intent.TokenIDs)
	}
	if len(intent.TokenAmounts) != 2 || intent.TokenAmounts[0] != 2 || intent.TokenAmounts[1] != 3 {
		t.Fatalf("amounts not round-tripped: %v", intent.TokenAmounts)
	}
}

func TestDecodeTokenGatedCountBeyondBody(t *testing.T) {
	payload, err := EncodeTokenGatedPayload(testAddr(0x01), testAddr(0x02), testAddr(0x33),
		[]*big.Int{big.NewInt(7)}, []uint64{1})
	if err != nil {
		t.Fatal(err)
	}

	// A declared count far beyond the bytes present must fail before any
	// entry-sized allocation happens.
	countOff := payloadPrefixLen + 20
	binary.BigEndian.PutUint32(payload[countOff:countOff+4], 0xFFFFFFFF)
	if _, err := DecodeMintPayload(validClaim(1), payload, testDropToken, testAddr(0x02)); !errors.Is(err, ErrPayloadTruncated) {
		t.Fatalf("expected ErrPayloadTruncated, got %v", err)
	}

	// Trailing bytes past the declared entries are rejected too.
	payload, err = EncodeTokenGatedPayload(testAddr(0x01), testAddr(0x02), testAddr(0x33),
		[]*big.Int{big.NewInt(7)}, []uint64{1})
	if err != nil {
		t.Fatal(err)
	}
	payload = append(payload, 0x00)
	if _, err := DecodeMintPayload(validClaim(1), payload, testDropToken, testAddr(0x02)); !errors.Is(err, ErrPayloadTruncated) {
		t.Fatalf("expected ErrPayloadTruncated, got %v", err)
	}
}

func TestDecodeSignedPayloadRoundTrip(t *testing.T) {
	stage := auctionStage(5, 5, 0, 100)
	stage.StageIndex = 2
	salt := [32]byte{0xab}
	signature := make([]byte, signatureLen)
	signature[0] = 0x11
	payload, err := EncodeSignedPayload(testAddr(0x01), testAddr(0x02), stage, salt, signature)
	if err != nil {
		t.Fatal(err)
	}
	intent, err := DecodeMintPayload(validClaim(1), payload, testDropToken, testAddr(0x02))
	if err != nil {
		t.Fatal(err)
	}
	if intent.Salt != salt {
		t.Fatalf("salt not round-tripped")
	}
	if len(intent.Signature) != signatureLen || intent.Signature[0] != 0x11 {
		t.Fatalf("signature not round-tripped")
	}

	if _, err := DecodeMintPayload(validClaim(1), payload[:len(payload)-1], testDropToken, testAddr(0x02)); !errors.Is(err, ErrPayloadTruncated) {
		t.Fatalf("expected ErrPayloadTruncated, got %v", err)
	}
}
