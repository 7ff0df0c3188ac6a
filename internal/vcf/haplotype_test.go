package vcf

import "testing"

func decodeHaps(t *testing.T, p *Parser, nsamples int) []int8 {
	t.Helper()
	haps := make([]int8, nsamples*2)
	rec, err := p.Next(nil, haps)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	return haps
}

func TestHaplotypesPhased(t *testing.T) {
	p := testParser(twoSampleHeader + "chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t0|1\t1|1\n")
	haps := decodeHaps(t, p, 2)

	want := []int8{0, 1, 1, 1}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}
}

func TestHaplotypesGTNotFirstSubfield(t *testing.T) {
	p := testParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tDP:GT\t12:0|0\t7:1|0\n")
	haps := decodeHaps(t, p, 2)

	want := []int8{0, 0, 1, 0}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}
}

func TestHaplotypesUnphasedNoticeIsOneShot(t *testing.T) {
	p, logs := observedParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t0/1\t1/1\n" +
		"chr1\t200\t.\tG\tC\t.\tPASS\t.\tGT\t0/0\t0/1\n")

	haps := decodeHaps(t, p, 2)
	want := []int8{0, 1, 1, 1}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("record 1: haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}

	// Unphased genotypes must stay valid after the notice fires.
	haps = decodeHaps(t, p, 2)
	want = []int8{0, 0, 0, 1}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("record 2: haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}

	notices := logs.FilterMessageSnippet("unphased")
	if notices.Len() != 1 {
		t.Errorf("got %d unphased notices across 4 unphased genotypes, want 1", notices.Len())
	}
}

func TestHaplotypesUnparseableDegradesToMissing(t *testing.T) {
	p, logs := observedParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t./.\t0|1\n")

	haps := decodeHaps(t, p, 2)
	want := []int8{Missing, Missing, 0, 1}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}

	if logs.FilterMessage("could not parse genotype").Len() != 1 {
		t.Error("expected a parse warning for the missing genotype")
	}
}

func TestHaplotypesNonBinaryAlleleCollapsesToMissing(t *testing.T) {
	p, logs := observedParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT,G,C\t.\tPASS\t.\tGT\t2/3\t0|2\n")

	haps := decodeHaps(t, p, 2)
	// Both positions degrade even when only one allele is non-binary.
	want := []int8{Missing, Missing, Missing, Missing}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}

	if logs.FilterMessage("non-binary allele, setting genotype to missing").Len() != 2 {
		t.Error("expected a non-binary warning per affected sample")
	}
}

func TestHaplotypesExplicitMissingPassesThrough(t *testing.T) {
	p, logs := observedParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t-1|-1\t0|0\n")

	haps := decodeHaps(t, p, 2)
	want := []int8{Missing, Missing, 0, 0}
	for i := range want {
		if haps[i] != want[i] {
			t.Errorf("haps[%d] = %d, want %d", i, haps[i], want[i])
		}
	}

	if logs.FilterMessage("non-binary allele, setting genotype to missing").Len() != 0 {
		t.Error("explicit missing alleles must not warn as non-binary")
	}
}

func TestHaplotypesGTAbsentIsFatal(t *testing.T) {
	p := testParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tGL\t-1.0,-0.1,-2.0\t.\n")

	haps := make([]int8, 4)
	if _, err := p.Next(nil, haps); err == nil {
		t.Error("expected error when FORMAT lacks GT")
	}
}

func TestHaplotypesTooManyGenotypesIsFatal(t *testing.T) {
	p := testParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t0|1\t1|1\t0|0\n")

	haps := make([]int8, 4)
	if _, err := p.Next(nil, haps); err == nil {
		t.Error("expected error for more genotype fields than samples")
	}
}

func TestHaplotypesTooFewGenotypesIsFatal(t *testing.T) {
	p := testParser(twoSampleHeader + "chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t0|1\n")

	haps := make([]int8, 4)
	if _, err := p.Next(nil, haps); err == nil {
		t.Error("expected error for truncated sample tail")
	}
}

func TestHaplotypesMissingGTSubfieldIsFatal(t *testing.T) {
	// FORMAT declares GT second; one sample token has no second
	// subfield, so the written count comes up short.
	p := testParser(twoSampleHeader +
		"chr1\t100\t.\tA\tT\t.\tPASS\t.\tDP:GT\t12\t7:0|1\n")

	haps := make([]int8, 4)
	if _, err := p.Next(nil, haps); err == nil {
		t.Error("expected error when a sample lacks the GT subfield")
	}
}

func TestHaplotypesBufferSizeMismatchIsFatal(t *testing.T) {
	p := testParser(twoSampleHeader + "chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t0|1\t1|1\n")

	haps := make([]int8, 2) // two samples need 4 slots
	if _, err := p.Next(nil, haps); err == nil {
		t.Error("expected error for undersized haplotype buffer")
	}
}

func TestParseAllelePair(t *testing.T) {
	tests := []struct {
		in         string
		hap1, hap2 int
		phased, ok bool
	}{
		{"0|1", 0, 1, true, true},
		{"1|1", 1, 1, true, true},
		{"0/1", 0, 1, false, true},
		{"2/3", 2, 3, false, true},
		{"-1|-1", -1, -1, true, true},
		{"./.", 0, 0, false, false},
		{".", 0, 0, false, false},
		{"", 0, 0, false, false},
		{"0", 0, 0, false, false},
		{"0|", 0, 0, false, false},
	}

	for _, tt := range tests {
		h1, h2, phased, ok := parseAllelePair(tt.in)
		if ok != tt.ok {
			t.Errorf("parseAllelePair(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if h1 != tt.hap1 || h2 != tt.hap2 || phased != tt.phased {
			t.Errorf("parseAllelePair(%q) = %d, %d, %v; want %d, %d, %v",
				tt.in, h1, h2, phased, tt.hap1, tt.hap2, tt.phased)
		}
	}
}
