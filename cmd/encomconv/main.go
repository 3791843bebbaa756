// Command encomconv converts between EnCom and JSON, touching
// encoding/json only at the process boundary.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-encom/encom/encom"
)

func main() {
	reverse := flag.Bool("d", false, "decode JSON on stdin, write EnCom on stdout")
	pretty := flag.Bool("pretty", false, "indent output")
	flag.Parse()

	var err error
	if *reverse {
		err = jsonToEncom(os.Stdin, os.Stdout, *pretty)
	} else {
		err = encomToJSON(os.Stdin, os.Stdout, *pretty)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "encomconv: %v\n", err)
		os.Exit(1)
	}
}

func encomToJSON(r io.Reader, w io.Writer, pretty bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	v, err := encom.DecodeValue(data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v.Interface())
}

func jsonToEncom(r io.Reader, w io.Writer, pretty bool) error {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return err
	}
	if pretty {
		return encom.EncodeIndentToWriter(w, v, "  ")
	}
	return encom.EncodeToWriter(w, v)
}
