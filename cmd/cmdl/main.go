package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/cmdl-lang/cmdl"
	"golang.org/x/term"
)

var version = "dev" // set via -ldflags at build time

// demoScript is run when no script file is given.
const demoScript = `# demo script
text "Starting demo..."
text "This line should appear."

loop(3):
    text "Inside loop, counting"

set x = 5
math x = x + 2
text "x is now: ", x

if x = 7:
    text "If statement works!"
else:
    text "If failed!"

text "Pausing 1.5 seconds..."
pause(1.5)

text "Clearing screen in 1 second..."
pause(1)
clear
text "Screen was cleared!"
text "Demo finished."
`

func main() {
	demo := flag.Bool("demo", false, "run the built-in demonstration script")
	flag.BoolVar(demo, "d", false, "shorthand for --demo")
	hold := flag.Bool("hold", false, "wait for a keypress after the script finishes")
	debug := flag.Bool("debug", false, "enable interpreter debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("cmdl " + version)
		return
	}

	interp := cmdl.New(&cmdl.Config{Debug: *debug})

	if *demo || flag.NArg() == 0 {
		fmt.Println("Running demo script...")
		fmt.Println()
		if _, err := interp.RunScript(demoScript); err != nil {
			os.Exit(1)
		}
		return
	}

	path := flag.Arg(0)
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "File not found: %s\n", path)
		usage()
		os.Exit(1)
	}

	exited, err := interp.RunFile(path)
	if err != nil {
		os.Exit(1)
	}

	// An explicit exit statement bypasses the hold.
	if *hold && !exited {
		holdForKey()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: cmdl [--demo] [--debug] [--hold] <script.cmdl>")
	flag.PrintDefaults()
}

// holdForKey blocks until a single keypress when stdin is a terminal,
// falling back to a line read when it is not.
func holdForKey() {
	fmt.Println()
	fmt.Print("Script finished. Press any key to exit...")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if oldState, err := term.MakeRaw(fd); err == nil {
			buf := make([]byte, 1)
			os.Stdin.Read(buf)
			term.Restore(fd, oldState)
			fmt.Println()
			return
		}
	}

	reader := bufio.NewReader(os.Stdin)
	reader.ReadString('\n')
	fmt.Println()
}
