package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

// snippetSeeds cover the constructs with the most intricate lexing.
var snippetSeeds = []string{
	"",
	"$i++;\n",
	"if ($x) {\n    print \"yes\\n\";\n} elsif ($y) {\n} else {\n}\n",
	"print <<\"EOT\";\nHello, $name\nEOT\n",
	"my %h = (a => 1, b => [1, 2]);\nfor my $k (sort keys %h) { print \"$k\\n\"; }\n",
	"$s =~ s{a/b}{c}gx;\n$t =~ tr/a-z/A-Z/;\n",
	"=head1 NAME\n\ntool\n\n=cut\nsub f { my ($a, $b) = @_; return $a // $b; }\n",
	"open(my $fh, '<', $file) or die \"no: $!\";\nwhile (my $line = <$fh>) { chomp $line; }\nclose($fh);\n",
	"eval { risky(); };\nif ($@) { warn $@; }\n__END__\ntrailing text\n",
	"print \"@{[ $x + 1 ]}\";\nmy $re = qr/(\\d+)/;\n",
	"{\n",
	"}\n}\n",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range snippetSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.pl / *.pm файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".pl" && ext != ".pm" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
