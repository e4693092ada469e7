// Package cli is the console view: it reads and parses commands and
// renders the board and the status panel.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdUnknown
	CmdMove
	CmdMoves
	CmdPromote
	CmdNew
	CmdResume
	CmdPause
	CmdContinue
	CmdSave
	CmdLoad
	CmdColor
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

// LineReader yields one input line per call and io.EOF at the end.
// *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

// prompter is implemented by readers that draw their own prompt
type prompter interface {
	SetPrompt(string)
}

type scannerReader struct {
	s *bufio.Scanner
}

// NewScannerReader reads lines from a plain stream such as a pipe
func NewScannerReader(r io.Reader) LineReader {
	return scannerReader{s: bufio.NewScanner(r)}
}

func (r scannerReader) Readline() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type CLI struct {
	input  LineReader
	output io.Writer
	theme  ColorTheme
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand reads and parses one line; end of input reads as quit
func (c *CLI) GetCommand() (*Command, error) {
	line, err := c.input.Readline()
	if errors.Is(err, io.EOF) {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseCommand(line), nil
}

// ParseCommand understands "e2 e4", "e2e4" and "e7e8q" as moves besides
// the named commands
func ParseCommand(input string) *Command {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	name := strings.ToLower(parts[0])
	args := parts[1:]

	switch name {
	case "moves":
		return &Command{Type: CmdMoves, Args: args}
	case "promote":
		return &Command{Type: CmdPromote, Args: args}
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		raw := strings.TrimSpace(input[len(parts[0]):])
		return &Command{Type: CmdResume, Args: args, Raw: raw}
	case "pause":
		return &Command{Type: CmdPause}
	case "continue":
		return &Command{Type: CmdContinue}
	case "save":
		return &Command{Type: CmdSave, Args: args}
	case "load":
		return &Command{Type: CmdLoad, Args: args}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	}

	switch {
	case len(parts) == 2 && len(parts[0]) == 2 && len(parts[1]) == 2:
		return &Command{Type: CmdMove, Args: []string{strings.ToLower(parts[0]), strings.ToLower(parts[1])}, Raw: input}
	case len(parts) == 1 && len(name) == 4:
		return &Command{Type: CmdMove, Args: []string{name[:2], name[2:]}, Raw: input}
	case len(parts) == 1 && len(name) == 5:
		// trailing letter names the promotion piece
		return &Command{Type: CmdMove, Args: []string{name[:2], name[2:4], name[4:]}, Raw: input}
	}
	return &Command{Type: CmdUnknown, Raw: input}
}

// PromotionName maps a one-letter suffix such as "q" to a piece name
func PromotionName(letter string) (string, bool) {
	switch letter {
	case "q":
		return "queen", true
	case "r":
		return "rook", true
	case "b":
		return "bishop", true
	case "n":
		return "knight", true
	}
	return "", false
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) Theme() ColorTheme { return c.theme }

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// ShowPrompt hands the prompt to a line editor or prints it
func (c *CLI) ShowPrompt(prompt string) {
	if p, ok := c.input.(prompter); ok {
		p.SetPrompt(prompt)
		return
	}
	fmt.Fprint(c.output, prompt)
}

// DisplayBoard prints the glyph grid unchanged when the theme is off,
// otherwise with coloured square backgrounds
func (c *CLI) DisplayBoard(b *board.Board) {
	if c.theme == ThemeOff {
		c.ShowMessage(b.String())
		return
	}

	theme := themes[c.theme]
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%d ", rank+1))
		for file := range 8 {
			coord, _ := board.NewCoord(file, rank)
			bg := theme.darkBg
			if coord.IsLight() {
				bg = theme.lightBg
			}
			p, ok := b.PieceAt(coord)
			if !ok {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if p.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, p.Glyph(), theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank+1))
	}
	sb.WriteString("  a b c d e f g h\n")
	c.ShowMessage(sb.String())
}

// ShowStatus prints clocks, material and captures under the board
func (c *CLI) ShowStatus(g *game.Game) {
	for _, color := range core.Colors {
		p := g.Player(color)
		line := fmt.Sprintf("%-5s", color.Name())
		if p.HasClock() {
			line += "  " + core.FormatClock(p.ReadClock())
		}
		if diff := p.ValueDiff(); diff > 0 {
			line += fmt.Sprintf("  +%d", diff)
		}
		if taken := p.TakenPieces(); len(taken) > 0 {
			var glyphs strings.Builder
			for _, piece := range taken {
				glyphs.WriteRune(piece.Glyph())
			}
			line += "  " + glyphs.String()
		}
		c.ShowMessage(line)
	}
	if g.Paused() {
		c.ShowMessage("Game paused, 'continue' to resume.")
	}
}

func (c *CLI) ShowMoves(square string, dests []board.Coord) {
	if len(dests) == 0 {
		c.ShowMessage(fmt.Sprintf("%s has no legal moves", square))
		return
	}
	names := make([]string, len(dests))
	for i, d := range dests {
		names[i] = d.String()
	}
	c.ShowMessage(fmt.Sprintf("%s: %s", square, strings.Join(names, " ")))
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  <from> <to>      - Make a move (e.g. e2 e4, e2e4, e7e8q)
  moves <square>   - List legal destinations of a piece
  promote <piece>  - Promote a pawn (queen|rook|bishop|knight)
  new              - Start a new game
  resume <FEN>     - Start from a specific board position
  pause            - Pause the clock
  continue         - Resume a paused game
  save <file>      - Save the whole game to a file
  load <file>      - Load a game saved with 'save'
  color <theme>    - Set board color theme (off|brown|green|gray)
  history          - Show move history and positions
  quit/exit        - Exit the program
  help/?           - Show this help message`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: <from> <to>, moves, promote, new, resume <FEN>, pause, continue, save, load, history, help/?")
	c.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w K - 0 1' to start from a puzzle.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(g *game.Game) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", g.InitialFEN()))

	moves := g.Moves()
	// a position with black to move starts with a half move
	offset := 0
	if first, ok := firstPly(g); ok && first.Color == core.ColorBlack {
		offset = 1
	}
	line := 1
	for i := -offset; i < len(moves); i += 2 {
		white := "..."
		if i >= 0 {
			white = moves[i]
		}
		black := "..."
		if i+1 < len(moves) {
			black = moves[i+1]
		}
		c.ShowMessage(fmt.Sprintf("%d. %s | %s", line, white, black))
		line++
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", g.FEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s", g.Status()))
}

func firstPly(g *game.Game) (game.Ply, bool) {
	plies := g.History()
	if len(plies) == 0 {
		return game.Ply{}, false
	}
	return plies[0], true
}

func (c *CLI) ShowGameOver(g *game.Game) {
	state := g.Status()
	msg := fmt.Sprintf("\nGame Over: %s", state)
	if w, ok := g.Winner(); ok {
		msg += fmt.Sprintf(", %s wins", w.Name())
	}
	c.ShowMessage(msg)
	c.ShowMessage("Start a new game with 'new' or 'resume'.")
}
