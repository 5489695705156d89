package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nonsonwune/counselling_db/cache"
	"github.com/nonsonwune/counselling_db/config"
	"github.com/nonsonwune/counselling_db/importer"
	"github.com/nonsonwune/counselling_db/models"
	"github.com/nonsonwune/counselling_db/search"
)

var stdin = bufio.NewReader(os.Stdin)

// app is the session: configuration, the loaded snapshot and the filter
// being edited.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	fetcher  importer.Fetcher
	store    cache.Store
	loader   *importer.Loader
	resolver *importer.Resolver

	source models.DataSource
	snap   *importer.Snapshot
	opts   search.Options
	spec   search.Spec
}

type rootFlags struct {
	source  string
	dataDir string
	baseURL string
	envFile string
	refresh bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var a *app

	root := &cobra.Command{
		Use:           "counselling_db",
		Short:         "Search medical counselling admission records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(flags)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&flags.source, "source", "", "data source: state or aiq (default from DATA_SOURCE or saved state)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "read data files from this directory")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "read data files from this web root")
	root.PersistentFlags().StringVar(&flags.envFile, "env", ".env", "environment file")
	root.PersistentFlags().BoolVar(&flags.refresh, "refresh", false, "ignore the record cache")

	appFn := func() *app { return a }
	root.AddCommand(
		&cobra.Command{
			Use:   "menu",
			Short: "Interactive menu (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMenu(cmd.Context())
			},
		},
		newSearchCmd(appFn),
		newHistoryCmd(appFn),
		newMeritCmd(appFn),
		newAskCmd(appFn),
		newOptionsCmd(appFn),
	)
	root.SetContext(context.Background())
	return root
}

func newApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if flags.dataDir != "" {
		cfg.DataDir, cfg.BaseURL = flags.dataDir, ""
	}
	if flags.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(flags.baseURL, "/")
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	a := &app{cfg: cfg, logger: logger, source: cfg.Source}

	if cfg.BaseURL != "" {
		a.fetcher = importer.NewHTTPFetcher(cfg.BaseURL, cfg.HTTPTimeout, cfg.CacheBust)
	} else {
		a.fetcher = importer.DirFetcher{Root: cfg.DataDir}
	}

	if cfg.CacheDriver != "none" {
		store, err := cache.Open(cfg.CacheDriver, cfg.CacheDSN())
		if err != nil {
			logger.Printf("Warning: record cache unavailable, loading from network: %v", err)
		} else {
			a.store = store
		}
	}

	a.loader = importer.NewLoader(a.fetcher, a.store, cfg.DedupKey, logger)
	a.loader.ManifestPath = cfg.ManifestPath
	a.resolver = importer.NewResolver(a.fetcher, cfg.ManifestPath, logger)

	saved, ok, err := search.LoadState(cfg.StateFile)
	if err != nil {
		logger.Printf("Warning: ignoring saved search: %v", err)
	}
	if ok && saved.Source != "" {
		a.source = saved.Source
	}
	if flags.source != "" {
		src, err := models.ParseDataSource(flags.source)
		if err != nil {
			return nil, err
		}
		a.source = src
	}

	if err := a.load(context.Background(), flags.refresh); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// load (re)builds the snapshot of the current source and resets the filters to
// the defaults of the new options, restoring the saved search where it fits.
func (a *app) load(ctx context.Context, refresh bool) error {
	color.Cyan("Loading %s data...", sourceLabel(a.source))
	snap, err := a.loader.Load(ctx, a.source, importer.LoadOptions{Refresh: refresh})
	if errors.Is(err, importer.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	a.snap = snap
	a.opts = search.CollectOptions(snap.Records)
	a.spec = search.DefaultSpec(a.opts)
	a.spec.Selection = a.cfg.Selection

	if saved, ok, err := search.LoadState(a.cfg.StateFile); err == nil && ok && saved.Source == a.source {
		a.spec = saved.Apply(a.spec, a.opts)
	}
	if len(snap.Skipped) > 0 {
		color.Yellow("%d file(s) could not be loaded", len(snap.Skipped))
	}
	color.Green("%s", snap)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Printf("Warning: closing cache: %v", err)
		}
	}
}

// runSearch evaluates the current filters, prints the page and saves the
// session. Only toggles are cleared afterwards.
func (a *app) runSearch() search.Result {
	res := search.Run(a.snap.Records, a.spec)
	renderResults(os.Stdout, res, a.source)
	if err := search.SaveState(a.cfg.StateFile, search.StateFrom(a.source, a.spec)); err != nil {
		a.logger.Printf("Warning: could not save search: %v", err)
	}
	a.spec.ResetTransient()
	return res
}

func (a *app) runMenu(ctx context.Context) error {
	for {
		displayMenu(a.source)
		choice := readChoice()

		switch choice {
		case "1":
			a.runSearch()
		case "2":
			a.editRankRange()
		case "3":
			a.spec.Years = selectFrom("Years", a.opts.Years, a.spec.Years)
		case "4":
			a.spec.Quotas = selectFrom("Quotas", a.opts.Quotas, a.spec.Quotas)
		case "5":
			a.spec.Colleges = selectFrom("Colleges", a.opts.Colleges, a.spec.Colleges)
		case "6":
			a.spec.Courses = selectFrom("Courses", a.opts.Courses, a.spec.Courses)
		case "7":
			if a.source == models.SourceAllIndia {
				color.Yellow("Category filters do not apply to All-India data.")
				continue
			}
			a.spec.Categories = selectFrom("Categories", a.opts.Categories, a.spec.Categories)
		case "8":
			a.editStatusFilters()
		case "9":
			a.editGender()
		case "10":
			a.editSort()
		case "11":
			a.promptHistory(ctx)
		case "12":
			a.promptMerit(ctx)
		case "13":
			a.promptQuestion(ctx)
		case "14":
			a.switchSource(ctx)
		case "15":
			if err := a.load(ctx, true); err != nil {
				color.Red("Error %v", err)
			}
		case "16":
			color.Green("Thank you for using the Counselling Records Search!")
			return nil
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func displayMenu(src models.DataSource) {
	color.Cyan("\n=== Counselling Records Search (%s) ===", sourceLabel(src))
	fmt.Println("1. Search")
	fmt.Println("2. Set Rank Range")
	fmt.Println("3. Select Years")
	fmt.Println("4. Select Quotas")
	fmt.Println("5. Select Colleges")
	fmt.Println("6. Select Courses")
	fmt.Println("7. Select Categories")
	fmt.Println("8. Status Filters (PH / MIN / MRC / Local)")
	fmt.Println("9. Gender")
	fmt.Println("10. Sort Order")
	fmt.Println("11. Rank History")
	fmt.Println("12. Merit Rank Lookup")
	fmt.Println("13. Ask a Question")
	fmt.Println("14. Switch Data Source")
	fmt.Println("15. Reload Data")
	fmt.Println("16. Exit")
	fmt.Print("\nEnter your choice (1-16): ")
}

func (a *app) editRankRange() {
	fmt.Printf("Minimum rank (blank for none) [%s]: ", rankText(a.spec.MinRank))
	a.spec.MinRank = readInt()
	fmt.Printf("Maximum rank (blank for none) [%s]: ", rankText(a.spec.MaxRank))
	a.spec.MaxRank = readInt()
	if a.spec.MinRank > 0 && a.spec.MaxRank > 0 && a.spec.MinRank > a.spec.MaxRank {
		a.spec.MinRank, a.spec.MaxRank = a.spec.MaxRank, a.spec.MinRank
	}
}

func (a *app) editStatusFilters() {
	for {
		s := &a.spec
		color.Yellow("\nStatus Filters")
		fmt.Printf("1. Include PH seats       [%s]\n", onOff(s.Include.PH))
		fmt.Printf("2. Include minority seats [%s]\n", onOff(s.Include.MIN))
		fmt.Printf("3. Include MRC seats      [%s]\n", onOff(s.Include.MRC))
		fmt.Printf("4. Include non-local      [%s]\n", onOff(s.Include.NonLocal))
		fmt.Printf("5. Only PH (next search)       [%s]\n", onOff(s.Only.PH))
		fmt.Printf("6. Only minority (next search) [%s]\n", onOff(s.Only.MIN))
		fmt.Printf("7. Only MRC (next search)      [%s]\n", onOff(s.Only.MRC))
		fmt.Printf("8. Only local (next search)    [%s]\n", onOff(s.Only.Local))
		fmt.Println("9. Done")
		fmt.Print("\nToggle: ")

		switch readChoice() {
		case "1":
			s.Include.PH = !s.Include.PH
		case "2":
			s.Include.MIN = !s.Include.MIN
		case "3":
			s.Include.MRC = !s.Include.MRC
		case "4":
			s.Include.NonLocal = !s.Include.NonLocal
		case "5":
			s.Only.PH = !s.Only.PH
		case "6":
			s.Only.MIN = !s.Only.MIN
		case "7":
			s.Only.MRC = !s.Only.MRC
		case "8":
			s.Only.Local = !s.Only.Local
		case "9", "":
			return
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func (a *app) editGender() {
	fmt.Printf("Show GEN seats? (y/n) [%s]: ", yesNo(a.spec.Male))
	a.spec.Male = readYesNo(a.spec.Male)
	fmt.Printf("Show FEM seats? (y/n) [%s]: ", yesNo(a.spec.Female))
	a.spec.Female = readYesNo(a.spec.Female)
}

func (a *app) editSort() {
	fmt.Print("Sort by (rank/year/college) [" + string(a.spec.Sort) + "]: ")
	if in := readString(); in != "" {
		key, err := search.ParseSortKey(in)
		if err != nil {
			color.Red("%v", err)
			return
		}
		a.spec.Sort = key
	}
	fmt.Printf("Descending? (y/n) [%s]: ", yesNo(a.spec.Desc))
	a.spec.Desc = readYesNo(a.spec.Desc)
}

func (a *app) switchSource(ctx context.Context) {
	next := models.SourceAllIndia
	if a.source == models.SourceAllIndia {
		next = models.SourceState
	}
	prev := a.source
	a.source = next
	if err := a.load(ctx, false); err != nil {
		color.Red("Error %v", err)
		a.source = prev
		return
	}
	if err := search.SaveState(a.cfg.StateFile, search.StateFrom(a.source, a.spec)); err != nil {
		a.logger.Printf("Warning: could not save search: %v", err)
	}
}

func (a *app) promptHistory(ctx context.Context) {
	fmt.Print("Rank: ")
	rank := readInt()
	if rank <= 0 {
		color.Red("Please enter a valid rank.")
		return
	}
	year, category := a.promptYearCategory()
	a.showHistory(ctx, rank, year, category)
}

func (a *app) showHistory(ctx context.Context, rank int, year string, category models.SourceCategory) {
	entries, err := a.resolver.Resolve(ctx, rank, year, category)
	if err != nil {
		color.Red("Error loading history: %v", err)
		return
	}
	renderHistory(os.Stdout, rank, year, category, entries)
}

func (a *app) promptMerit(ctx context.Context) {
	fmt.Print("Exam rank: ")
	rank := readInt()
	if rank <= 0 {
		color.Red("Please enter a valid rank.")
		return
	}
	year, category := a.promptYearCategory()
	a.showMerit(ctx, rank, year, category)
}

func (a *app) showMerit(ctx context.Context, rank int, year string, category models.SourceCategory) {
	table, err := importer.LoadMeritTable(ctx, a.fetcher, a.cfg.ManifestPath, year, category, a.logger)
	if err != nil {
		color.Red("Merit lookup unavailable: %v", err)
		return
	}
	m, err := table.Lookup(rank)
	if err != nil {
		color.Red("Merit lookup unavailable: %v", err)
		return
	}
	renderMerit(os.Stdout, m)
}

func (a *app) promptYearCategory() (string, models.SourceCategory) {
	defYear := ""
	if len(a.opts.Years) > 0 {
		defYear = a.opts.Years[0]
	}
	fmt.Printf("Year [%s]: ", defYear)
	year := readString()
	if year == "" {
		year = defYear
	}

	defCat := models.StateCounselling
	if a.source == models.SourceAllIndia {
		defCat = models.AllIndia
	}
	fmt.Printf("Category (CQ/MQ/AIQ) [%s]: ", defCat)
	category := defCat
	if in := readString(); in != "" {
		c, ok := models.ParseSourceCategory(in)
		if !ok {
			color.Yellow("Unknown category %q, using %s", in, defCat)
		} else {
			category = c
		}
	}
	return year, category
}

// selectFrom edits one multi-select group. Input is "all", "none", a comma
// separated list of option numbers, or text to narrow the list.
func selectFrom(label string, available, current []string) []string {
	shown := available
	for {
		selected := make(map[string]bool, len(current))
		for _, v := range current {
			selected[v] = true
		}
		color.Yellow("\n%s (%d of %d selected)", label, len(current), len(available))
		for i, v := range shown {
			mark := " "
			if selected[v] {
				mark = "x"
			}
			fmt.Printf("%3d. [%s] %s\n", i+1, mark, v)
		}
		fmt.Print("\nNumbers to select (e.g. 1,3,5), all, none, text to filter, or blank when done: ")
		in := readString()

		switch strings.ToLower(in) {
		case "":
			return current
		case "all":
			current = append([]string{}, available...)
			shown = available
			continue
		case "none":
			current = []string{}
			continue
		}

		if picks, ok := parseNumbers(in, len(shown)); ok {
			next := []string{}
			for _, i := range picks {
				next = append(next, shown[i])
			}
			current = next
			continue
		}
		shown = search.FilterOptions(available, in)
		if len(shown) == 0 {
			color.Red("Nothing matches %q", in)
			shown = available
		}
	}
}

func parseNumbers(in string, n int) ([]int, bool) {
	var out []int
	for _, part := range strings.Split(in, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || i < 1 || i > n {
			return nil, false
		}
		out = append(out, i-1)
	}
	return out, len(out) > 0
}

func readChoice() string {
	return readString()
}

func readString() string {
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func readInt() int {
	i, _ := strconv.Atoi(strings.ReplaceAll(readString(), ",", ""))
	return i
}

func readYesNo(def bool) bool {
	switch strings.ToLower(readString()) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return def
}

func sourceLabel(src models.DataSource) string {
	if src == models.SourceAllIndia {
		return "All-India"
	}
	return "State"
}

func rankText(n int) string {
	if n <= 0 {
		return "none"
	}
	return strconv.Itoa(n)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
