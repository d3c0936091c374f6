// Command salesctl runs back-office chores against a running POS server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"warungpos/backend/internal/backoffice"
)

const usage = `usage: salesctl [-addr URL] <command> [flags]

commands:
  next-id                    print the id the next sale will get
  history                    print every sale, newest first, as JSON
  analytics                  print per-product totals as JSON
  export -o FILE             write the sales CSV to FILE ("-" for stdout)
  purge -start S -end E      delete sales created within [S, E]
  delete -id N               delete one sale
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "salesctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("salesctl", flag.ContinueOnError)
	addr := global.String("addr", "http://localhost:3000", "server base URL")
	timeout := global.Duration("timeout", 30*time.Second, "overall request timeout")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := backoffice.New(*addr)
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "next-id":
		next, err := client.NextSaleID(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, next)
		return err
	case "history":
		sales, err := client.History(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, sales)
	case "analytics":
		report, err := client.Analytics(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, report)
	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		out := fs.String("o", "sales_data.csv", `output file, "-" for stdout`)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		data, err := client.ExportCSV(ctx)
		if err != nil {
			return err
		}
		if *out == "-" {
			_, err = stdout.Write(data)
			return err
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "wrote %d bytes to %s\n", len(data), *out)
		return err
	case "purge":
		fs := flag.NewFlagSet("purge", flag.ContinueOnError)
		start := fs.String("start", "", "range start (RFC 3339 or YYYY-MM-DD)")
		end := fs.String("end", "", "range end, inclusive")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *start == "" || *end == "" {
			return errors.New("purge needs both -start and -end")
		}
		removed, err := client.PurgeRange(ctx, *start, *end)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "deleted %d sales\n", removed)
		return err
	case "delete":
		fs := flag.NewFlagSet("delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "sale id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id < 1 {
			return errors.New("delete needs -id")
		}
		removed, err := client.DeleteSale(ctx, *id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "deleted %d sales\n", removed)
		return err
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
