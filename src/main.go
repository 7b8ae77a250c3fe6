package main

import (
	"fmt"
	"os"

	"ivc/src/backend/asm"
	"ivc/src/compiler"
	"ivc/src/util"
	"ivc/src/vm"
)

// run drives one compiler invocation end to end (spec.md section 6): read source, compile it,
// then either write the assembled text to opt.Out, print a static cost estimate, or run the
// reference VM against stdin/stdout and print its total cost.
func run(opt util.Options) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	res, errs := compiler.Compile(src, opt.Threads)
	for _, r := range errs.Records() {
		fmt.Fprintln(os.Stderr, r)
	}
	if errs.HasErrors() {
		return fmt.Errorf("compilation failed")
	}

	if opt.Verbose {
		fmt.Fprintf(os.Stderr, "assembled %d instructions, estimated cost %d\n", len(res.Lines), res.Estimate)
	}

	if opt.Estimate {
		fmt.Println(res.Estimate)
		return nil
	}

	if len(opt.Out) > 0 {
		return os.WriteFile(opt.Out, []byte(asm.Render(res.Lines)), 0644)
	}

	if restore, ok := util.RawStdin(); ok {
		defer restore()
	}

	machine := vm.New(os.Stdin, os.Stdout)
	cost, err := machine.Run(res.Lines)
	if err != nil {
		return fmt.Errorf("runtime error: %s", err)
	}
	fmt.Println(cost)
	return nil
}

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "command line argument error: %s\n", err)
		os.Exit(1)
	}

	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
