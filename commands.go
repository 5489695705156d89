package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nonsonwune/counselling_db/models"
	"github.com/nonsonwune/counselling_db/search"
)

type searchFlags struct {
	minRank, maxRank int
	years            []string
	quotas           []string
	colleges         []string
	courses          []string
	categories       []string
	gender           string
	onlyPH           bool
	onlyMIN          bool
	onlyMRC          bool
	onlyLocal        bool
	excludePH        bool
	excludeMIN       bool
	excludeMRC       bool
	excludeNonLocal  bool
	sort             string
	desc             bool
	saved            bool
}

func newSearchCmd(a func() *app) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter the loaded records and print the first page",
		Long: `Filter the loaded records and print the first page.

Groups not given on the command line keep their defaults: every option
selected, except quotas which start with NS only. Use --saved to start from
the last saved search instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			spec, err := f.apply(cmd, app)
			if err != nil {
				return err
			}
			app.spec = spec
			app.runSearch()
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.minRank, "min", 0, "minimum rank")
	fl.IntVar(&f.maxRank, "max", 0, "maximum rank")
	fl.StringSliceVar(&f.years, "year", nil, "years, e.g. 23,24")
	fl.StringSliceVar(&f.quotas, "quota", nil, "admission types, e.g. NS,MQ1")
	fl.StringSliceVar(&f.colleges, "college", nil, "colleges by abbreviation or name fragment")
	fl.StringSliceVar(&f.courses, "course", nil, "courses by name fragment")
	fl.StringSliceVar(&f.categories, "category", nil, "reservation categories, e.g. OC,SC")
	fl.StringVar(&f.gender, "gender", "", "M or F")
	fl.BoolVar(&f.onlyPH, "only-ph", false, "only PH seats")
	fl.BoolVar(&f.onlyMIN, "only-min", false, "only minority seats")
	fl.BoolVar(&f.onlyMRC, "only-mrc", false, "only MRC seats")
	fl.BoolVar(&f.onlyLocal, "only-local", false, "only local seats")
	fl.BoolVar(&f.excludePH, "exclude-ph", false, "hide PH seats")
	fl.BoolVar(&f.excludeMIN, "exclude-min", false, "hide minority seats")
	fl.BoolVar(&f.excludeMRC, "exclude-mrc", false, "hide MRC seats")
	fl.BoolVar(&f.excludeNonLocal, "exclude-nonlocal", false, "hide non-local seats")
	fl.StringVar(&f.sort, "sort", "rank", "sort by rank, year or college")
	fl.BoolVar(&f.desc, "desc", false, "sort descending")
	fl.BoolVar(&f.saved, "saved", false, "start from the saved search")
}

func (f *searchFlags) apply(cmd *cobra.Command, a *app) (search.Spec, error) {
	spec := search.DefaultSpec(a.opts)
	spec.Selection = a.cfg.Selection
	if f.saved {
		spec = a.spec
	}
	changed := cmd.Flags().Changed

	if changed("min") {
		spec.MinRank = f.minRank
	}
	if changed("max") {
		spec.MaxRank = f.maxRank
	}
	if changed("year") {
		spec.Years = pickExact(f.years, a.opts.Years)
	}
	if changed("quota") {
		spec.Quotas = pickExact(f.quotas, a.opts.Quotas)
	}
	if changed("category") {
		spec.Categories = pickExact(f.categories, a.opts.Categories)
	}
	if changed("college") {
		spec.Colleges = pickFragment(f.colleges, a.opts.Colleges, true)
	}
	if changed("course") {
		spec.Courses = pickFragment(f.courses, a.opts.Courses, false)
	}
	switch strings.ToUpper(f.gender) {
	case "":
	case "M", "MALE", "GEN":
		spec.Male, spec.Female = true, false
	case "F", "FEMALE", "FEM":
		spec.Male, spec.Female = false, true
	default:
		return spec, fmt.Errorf("invalid --gender %q (want M or F)", f.gender)
	}

	spec.Only = search.Only{PH: f.onlyPH, MIN: f.onlyMIN, MRC: f.onlyMRC, Local: f.onlyLocal}
	if f.excludePH {
		spec.Include.PH = false
	}
	if f.excludeMIN {
		spec.Include.MIN = false
	}
	if f.excludeMRC {
		spec.Include.MRC = false
	}
	if f.excludeNonLocal {
		spec.Include.NonLocal = false
	}
	if changed("sort") || !f.saved {
		key, err := search.ParseSortKey(f.sort)
		if err != nil {
			return spec, err
		}
		spec.Sort = key
	}
	if changed("desc") || !f.saved {
		spec.Desc = f.desc
	}
	return spec, nil
}

// pickExact keeps the available values named in want, ignoring case.
func pickExact(want, available []string) []string {
	out := []string{}
	for _, v := range available {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(w), v) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// pickFragment keeps the available values containing any fragment in want.
// For colleges an exact abbreviation match also counts.
func pickFragment(want, available []string, college bool) []string {
	out := []string{}
	for _, v := range available {
		lower := strings.ToLower(v)
		for _, w := range want {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			if strings.Contains(lower, w) || college && strings.EqualFold(models.CollegeAbbreviation(v), w) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

type yearCategoryFlags struct {
	year     string
	category string
}

func (f *yearCategoryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.year, "year", "", "year as in the data, e.g. 24 (default: latest)")
	cmd.Flags().StringVar(&f.category, "category", "", "CQ, MQ or AIQ (default: by data source)")
}

func (f *yearCategoryFlags) resolve(a *app) (string, models.SourceCategory, error) {
	year := f.year
	if year == "" && len(a.opts.Years) > 0 {
		year = a.opts.Years[0]
	}
	category := models.StateCounselling
	if a.source == models.SourceAllIndia {
		category = models.AllIndia
	}
	if f.category != "" {
		c, ok := models.ParseSourceCategory(f.category)
		if !ok {
			return "", "", fmt.Errorf("invalid --category %q (want CQ, MQ or AIQ)", f.category)
		}
		category = c
	}
	return year, category, nil
}

func parseRankArg(s string) (int, error) {
	rank, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || rank <= 0 {
		return 0, fmt.Errorf("invalid rank %q", s)
	}
	return rank, nil
}

func newHistoryCmd(a func() *app) *cobra.Command {
	f := &yearCategoryFlags{}
	cmd := &cobra.Command{
		Use:   "history RANK",
		Short: "Show every round in which a rank was allotted a seat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := parseRankArg(args[0])
			if err != nil {
				return err
			}
			app := a()
			year, category, err := f.resolve(app)
			if err != nil {
				return err
			}
			entries, err := app.resolver.Resolve(cmd.Context(), rank, year, category)
			if err != nil {
				return err
			}
			renderHistory(os.Stdout, rank, year, category, entries)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newMeritCmd(a func() *app) *cobra.Command {
	f := &yearCategoryFlags{}
	cmd := &cobra.Command{
		Use:   "merit RANK",
		Short: "Look up the state merit rank for an exam rank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := parseRankArg(args[0])
			if err != nil {
				return err
			}
			app := a()
			year, category, err := f.resolve(app)
			if err != nil {
				return err
			}
			app.showMerit(cmd.Context(), rank, year, category)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newOptionsCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the selectable years, quotas, categories, colleges and courses",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			renderOptions(os.Stdout, a().opts)
		},
	}
}
