// Command encomfmt validates and reformats an EnCom document read from
// stdin, writing the reformatted document to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-encom/encom/encom"
)

func main() {
	pretty := flag.Bool("pretty", false, "indent nested containers")
	indent := flag.String("indent", "  ", "indent unit, with -pretty")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *pretty, *indent); err != nil {
		fmt.Fprintf(os.Stderr, "encomfmt: %v\n", err)
		os.Exit(1)
	}
}

// run reads one EnCom document from r and writes its canonical form to w.
// Unlike line protocol's per-line recovery, an EnCom document has no
// interior resynchronization point, so a single parse error fails the
// whole run.
func run(r io.Reader, w io.Writer, pretty bool, indent string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	v, err := encom.DecodeValue(data)
	if err != nil {
		return err
	}
	if pretty {
		return encom.EncodeIndentToWriter(w, v, indent)
	}
	return encom.EncodeToWriter(w, v)
}
