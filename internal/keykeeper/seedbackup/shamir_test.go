package seedbackup

import "testing"

func TestSplitRecoverRoundTrip(t *testing.T) {
	seedHex := "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"

	shares, err := Split(seedHex, 5, 3)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(shares) != 5 {
		t.Fatalf("got %d shares, want 5", len(shares))
	}

	recovered, err := Recover(shares[:3])
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != seedHex {
		t.Errorf("got %s, want %s", recovered, seedHex)
	}
}

func TestRecoverFailsBelowThreshold(t *testing.T) {
	seedHex := "fffcf9f6da3247d8a846f4b6113e6173"

	shares, err := Split(seedHex, 5, 3)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	recovered, err := Recover(shares[:2])
	if err == nil && recovered == seedHex {
		t.Errorf("expected recovery with fewer than threshold shares to fail or diverge")
	}
}

func TestSplitRejectsInvalidHex(t *testing.T) {
	if _, err := Split("not-hex", 5, 3); err == nil {
		t.Errorf("expected an error for non-hex seed input")
	}
}

func TestRecoverAcceptsDifferentSubsetsOfShares(t *testing.T) {
	seedHex := "deadbeefdeadbeefdeadbeefdeadbeef"

	shares, err := Split(seedHex, 5, 3)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	first, err := Recover([]string{shares[0], shares[1], shares[2]})
	if err != nil {
		t.Fatalf("recover first subset: %v", err)
	}
	second, err := Recover([]string{shares[2], shares[3], shares[4]})
	if err != nil {
		t.Fatalf("recover second subset: %v", err)
	}
	if first != second || first != seedHex {
		t.Errorf("different share subsets recovered different seeds: %s vs %s", first, second)
	}
}
