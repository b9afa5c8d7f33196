// Command aptly-ctl is a management client for an Aptly repository server:
// it puts local .deb files into a repository, copies or removes packages
// already known to the server, searches across every repository and
// snapshot, and rotates out old package versions, refreshing every
// dependent publish after each mutation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
	"github.com/cyril-s/aptly-ctl-go/command"
	"github.com/cyril-s/aptly-ctl-go/config"
	"github.com/cyril-s/aptly-ctl-go/search"
	"github.com/cyril-s/aptly-ctl-go/signing"
)

// Exit codes per the command surface's contract: 0 success, 1 domain
// failure after setup, 2 argument or configuration failure.
const (
	exitOK            = 0
	exitDomainFailure = 1
	exitConfigFailure = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	app := kingpin.New("aptly-ctl", "Management client for an Aptly repository server.")
	app.Version("aptly-ctl-go (unversioned build)")
	app.HelpFlag.Short('h')

	var (
		configPath = app.Flag("config", "Path to the configuration file (default: search well-known locations).").Short('c').String()
		section    = app.Flag("profile", "Configuration profile/section to use.").Short('p').String()
		overrides  = app.Flag("set", "Configuration override as KEY.PATH=value (repeatable).").Strings()
		debug      = app.Flag("debug", "Enable debug-level logging.").Bool()
		jsonOut    = app.Flag("json", "Emit machine-readable JSON events instead of a human log.").Bool()
	)

	putCmd := app.Command("put", "Upload local .deb files into a repository.")
	putRepo := putCmd.Arg("repo", "Target local repository name.").Required().String()
	putFiles := putCmd.Arg("file", "Path to a .deb file (repeatable).").Required().ExistingFiles()
	putForce := putCmd.Flag("force-replace", "Replace an existing package with the same name/version/architecture.").Bool()

	copyCmd := app.Command("copy", "Copy packages already known to the server into a repository.")
	copyTarget := copyCmd.Arg("repo", "Target local repository name.").Required().String()
	copyRefs := copyCmd.Arg("ref", "Aptly key or \"repo/ref\" (repeatable).").Required().Strings()
	copyDryRun := copyCmd.Flag("dry-run", "Report what would change without changing it.").Bool()

	removeCmd := app.Command("remove", "Remove packages from their repositories.")
	removeRefs := removeCmd.Arg("ref", "\"repo/ref\" aptly key or direct reference (repeatable).").Required().Strings()
	removeDryRun := removeCmd.Flag("dry-run", "Report what would change without changing it.").Bool()

	searchCmd := app.Command("search", "Search across every repository and snapshot.")
	searchQueries := searchCmd.Arg("query", "Aptly package query (repeatable; omit for all packages).").Strings()
	searchWithDeps := searchCmd.Flag("with-deps", "Include dependencies in the search.").Bool()
	searchDetails := searchCmd.Flag("details", "Return full package fields, not just the aptly key.").Bool()
	searchFilter := searchCmd.Flag("store", "Only search stores whose name matches this regular expression.").String()
	searchWorkers := searchCmd.Flag("workers", "Maximum concurrent search requests.").Int()

	rotateCmd := app.Command("rotate", "Delete old package versions from one repository.")
	rotateRepo := rotateCmd.Arg("repo", "Local repository name.").Required().String()
	rotateN := rotateCmd.Arg("n", "Keep the newest N versions per (name, architecture) (negative: delete the newest N instead).").Required().Int()
	rotateDryRun := rotateCmd.Flag("dry-run", "Report what would be deleted without deleting it.").Bool()

	repoCmd := app.Command("repo", "Administer local repositories.")
	repoListCmd := repoCmd.Command("list", "List local repositories.")
	repoListDetail := repoListCmd.Flag("detail", "Print each repository's settings, not just its name.").Bool()
	repoCreateCmd := repoCmd.Command("create", "Create a local repository.")
	repoCreateName := repoCreateCmd.Arg("name", "Name of the new repository.").Required().String()
	repoCreateComment := repoCreateCmd.Flag("comment", "Text describing the repository.").String()
	repoCreateDist := repoCreateCmd.Flag("dist", "Default distribution when publishing from this repository.").String()
	repoCreateComp := repoCreateCmd.Flag("comp", "Default component when publishing from this repository.").String()
	repoShowCmd := repoCmd.Command("show", "Show one local repository.")
	repoShowName := repoShowCmd.Arg("name", "Repository name.").Required().String()
	repoShowPackages := repoShowCmd.Flag("packages", "Also list the repository's package keys.").Bool()
	repoEditCmd := repoCmd.Command("edit", "Edit a local repository.")
	repoEditName := repoEditCmd.Arg("name", "Repository name.").Required().String()
	repoEditComment := repoEditCmd.Flag("comment", "Text describing the repository.").String()
	repoEditDist := repoEditCmd.Flag("dist", "Default distribution when publishing from this repository.").String()
	repoEditComp := repoEditCmd.Flag("comp", "Default component when publishing from this repository.").String()
	repoDeleteCmd := repoCmd.Command("delete", "Delete a local repository.")
	repoDeleteName := repoDeleteCmd.Arg("name", "Repository name.").Required().String()
	repoDeleteForce := repoDeleteCmd.Flag("force", "Delete even when snapshots were made from this repository.").Short('f').Bool()

	publishCmd := app.Command("publish", "Administer publishes.")
	publishListCmd := publishCmd.Command("list", "List publishes.")
	publishListDetail := publishListCmd.Flag("detail", "Print each publish's settings, not just its spec.").Bool()
	publishCreateCmd := publishCmd.Command("create", "Publish a snapshot or local repository.")
	publishCreateKind := publishCreateCmd.Flag("source-kind", "Publish from local repositories or snapshots.").Short('s').Required().Enum("local", "snapshot")
	publishCreateArchs := publishCreateCmd.Flag("architectures", "Comma-separated list of architectures to publish.").String()
	publishCreateLabel := publishCreateCmd.Flag("label", "Value of the Label: field in the published repository stanza.").String()
	publishCreateOrigin := publishCreateCmd.Flag("origin", "Value of the Origin: field in the published repository stanza.").String()
	publishCreateForce := publishCreateCmd.Flag("force", "Overwrite files in the pool directory without notice.").Short('f').Bool()
	publishCreateSpec := publishCreateCmd.Arg("pubspec", "\"[storage:]prefix/distribution\" of the new publish.").Required().String()
	publishCreateSources := publishCreateCmd.Arg("source", "\"name[=component]\" to publish from (repeatable).").Required().Strings()
	publishUpdateCmd := publishCmd.Command("update", "Update a published local repository.")
	publishUpdateSpec := publishUpdateCmd.Arg("pubspec", "\"[storage:]prefix/distribution\" of the publish.").Required().String()
	publishUpdateForce := publishUpdateCmd.Flag("force", "Overwrite files in the pool directory without notice.").Short('f').Bool()
	publishDropCmd := publishCmd.Command("drop", "Drop a publish.")
	publishDropSpec := publishDropCmd.Arg("pubspec", "\"[storage:]prefix/distribution\" of the publish.").Required().String()
	publishDropForce := publishDropCmd.Flag("force", "Drop even when the published files would be left behind.").Short('f').Bool()

	signingCmd := app.Command("signing", "Signing-related utilities.")
	signingInspectCmd := signingCmd.Command("inspect", "Inspect an armored OpenPGP key file.")
	signingInspectPath := signingInspectCmd.Arg("keyfile", "Path to the armored key file.").Required().ExistingFile()

	versionCmd := app.Command("version", "Print the Aptly server's version.")

	cmd, err := app.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigFailure
	}

	logger := logrus.New()
	logger.Level = logrus.InfoLevel
	if *debug {
		logger.Level = logrus.DebugLevel
	}

	cfg, err := config.Load(*configPath, *section, *overrides)
	if err != nil {
		logger.Errorf("loading configuration: %v", err)
		return exitConfigFailure
	}
	if cfg.URL == "" {
		logger.Error("loading configuration: no server URL configured")
		return exitConfigFailure
	}
	if err := cfg.DefaultSigning.Validate(); err != nil {
		logger.Errorf("loading configuration: %v", err)
		return exitConfigFailure
	}

	client := aptlyclient.NewClient(cfg.URL,
		aptlyclient.WithTimeouts(cfg.ConnectTimeout, cfg.ReadTimeout),
		aptlyclient.WithSigning(signing.Resolver{Default: cfg.DefaultSigning, Overrides: cfg.SigningMap}),
	)

	listener := command.Listener(func(e fmt.Stringer) {
		if *jsonOut {
			fmt.Println(e.String())
			return
		}
		logger.Info(strings.TrimSuffix(e.String(), "\n"))
	})

	// An interrupt cancels the context shared by every in-flight request;
	// fan-out operations return whatever they had collected by then. A
	// second interrupt kills the process the usual way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	switch cmd {
	case putCmd.FullCommand():
		refs, err := command.Put(ctx, client, *putRepo, *putFiles, *putForce, listener)
		return report(logger, *jsonOut, refs, err)

	case copyCmd.FullCommand():
		refs, err := command.Copy(ctx, client, *copyTarget, *copyRefs, *copyDryRun, listener)
		return report(logger, *jsonOut, refs, err)

	case removeCmd.FullCommand():
		failed, err := command.Remove(ctx, client, *removeRefs, *removeDryRun, listener)
		return report(logger, *jsonOut, failed, err)

	case searchCmd.FullCommand():
		concurrency := *searchWorkers
		if concurrency <= 0 {
			concurrency = cfg.MaxWorkers
		}
		opts := command.SearchOptions{
			WithDeps:    *searchWithDeps,
			Details:     *searchDetails,
			Concurrency: concurrency,
			Listener:    listener,
		}
		if *searchFilter != "" {
			re, err := regexp.Compile(*searchFilter)
			if err != nil {
				logger.Errorf("invalid --store pattern: %v", err)
				return exitConfigFailure
			}
			opts.StoreFilter = re
		}
		matches, errs := command.Search(ctx, client, *searchQueries, opts)
		printSearchResults(matches, *jsonOut)
		if len(errs) > 0 {
			for _, e := range errs {
				logger.Error(e)
			}
			return exitDomainFailure
		}
		return exitOK

	case rotateCmd.FullCommand():
		keys, err := command.RotateRepo(ctx, client, *rotateRepo, *rotateN, *rotateDryRun, listener)
		return report(logger, *jsonOut, keys, err)

	case repoListCmd.FullCommand():
		repos, err := command.RepoList(ctx, client)
		if err != nil {
			return fail(logger, err)
		}
		printRepos(repos, *repoListDetail, *jsonOut)
		return exitOK

	case repoCreateCmd.FullCommand():
		repo, err := command.RepoCreate(ctx, client, aptlytypes.Repository{
			Name:                *repoCreateName,
			Comment:             *repoCreateComment,
			DefaultDistribution: *repoCreateDist,
			DefaultComponent:    *repoCreateComp,
		})
		if err != nil {
			return fail(logger, err)
		}
		printRepo(repo, nil, *jsonOut)
		return exitOK

	case repoShowCmd.FullCommand():
		repo, keys, err := command.RepoShow(ctx, client, *repoShowName, *repoShowPackages)
		if err != nil {
			return fail(logger, err)
		}
		printRepo(repo, keys, *jsonOut)
		return exitOK

	case repoEditCmd.FullCommand():
		repo, err := command.RepoEdit(ctx, client, *repoEditName, aptlytypes.Repository{
			Comment:             *repoEditComment,
			DefaultDistribution: *repoEditDist,
			DefaultComponent:    *repoEditComp,
		})
		if err != nil {
			return fail(logger, err)
		}
		printRepo(repo, nil, *jsonOut)
		return exitOK

	case repoDeleteCmd.FullCommand():
		if err := command.RepoDelete(ctx, client, *repoDeleteName, *repoDeleteForce); err != nil {
			return fail(logger, err)
		}
		return exitOK

	case publishListCmd.FullCommand():
		publishes, err := command.PublishList(ctx, client)
		if err != nil {
			return fail(logger, err)
		}
		printPublishes(publishes, *publishListDetail, *jsonOut)
		return exitOK

	case publishCreateCmd.FullCommand():
		spec, err := command.ParsePubSpec(*publishCreateSpec)
		if err != nil {
			return fail(logger, err)
		}
		var archs []string
		if *publishCreateArchs != "" {
			archs = strings.Split(*publishCreateArchs, ",")
		}
		pub, err := command.PublishCreate(ctx, client, spec, *publishCreateKind, *publishCreateSources, command.PublishOptions{
			Architectures:  archs,
			Label:          *publishCreateLabel,
			Origin:         *publishCreateOrigin,
			ForceOverwrite: *publishCreateForce,
		})
		if err != nil {
			return fail(logger, err)
		}
		printPublish(pub, *jsonOut)
		return exitOK

	case publishUpdateCmd.FullCommand():
		spec, err := command.ParsePubSpec(*publishUpdateSpec)
		if err != nil {
			return fail(logger, err)
		}
		pub, err := command.PublishUpdate(ctx, client, spec, *publishUpdateForce)
		if err != nil {
			return fail(logger, err)
		}
		printPublish(pub, *jsonOut)
		return exitOK

	case publishDropCmd.FullCommand():
		spec, err := command.ParsePubSpec(*publishDropSpec)
		if err != nil {
			return fail(logger, err)
		}
		if err := command.PublishDrop(ctx, client, spec, *publishDropForce); err != nil {
			return fail(logger, err)
		}
		return exitOK

	case signingInspectCmd.FullCommand():
		info, err := signing.InspectKey(*signingInspectPath)
		if err != nil {
			return fail(logger, err)
		}
		printKeyInfo(info, *jsonOut)
		return exitOK

	case versionCmd.FullCommand():
		v, err := client.Version(ctx)
		if err != nil {
			logger.Error(err)
			return exitDomainFailure
		}
		fmt.Println(v)
		return exitOK
	}

	return exitConfigFailure
}

// report prints a command's returned reference list and classifies its
// error, if any, into the correct exit code: local/config errors that
// indicate a user mistake are distinct from a domain failure the caller
// already partially recovered from (aggregated errors still report
// whatever succeeded).
func report(logger *logrus.Logger, jsonOut bool, refs []string, err error) int {
	if jsonOut {
		b, _ := json.Marshal(refs)
		fmt.Println(string(b))
	} else {
		for _, r := range refs {
			fmt.Println(r)
		}
	}
	if err == nil {
		return exitOK
	}
	return fail(logger, err)
}

// fail logs err and maps it to an exit code: user mistakes (bad references,
// bad configuration) exit 2, everything else exits 1.
func fail(logger *logrus.Logger, err error) int {
	logger.Error(err)
	var cfgErr *aptlyerr.ConfigurationError
	var parseErr *aptlyerr.ParseError
	if asError(err, &cfgErr) || asError(err, &parseErr) {
		return exitConfigFailure
	}
	return exitDomainFailure
}

func asError[T error](err error, target *T) bool {
	for err != nil {
		if e, ok := err.(T); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func printRepos(repos []aptlytypes.Repository, detail, jsonOut bool) {
	if jsonOut {
		b, _ := json.Marshal(repos)
		fmt.Println(string(b))
		return
	}
	for _, r := range repos {
		if detail {
			printRepoDetail(r, nil)
		} else {
			fmt.Println(r.Name)
		}
	}
}

func printRepo(r aptlytypes.Repository, keys []string, jsonOut bool) {
	if jsonOut {
		out := map[string]any{"Repo": r}
		if keys != nil {
			out["Packages"] = keys
		}
		b, _ := json.Marshal(out)
		fmt.Println(string(b))
		return
	}
	printRepoDetail(r, keys)
}

func printRepoDetail(r aptlytypes.Repository, keys []string) {
	fmt.Println(r.Name)
	fmt.Println("    Default distribution: " + r.DefaultDistribution)
	fmt.Println("    Default component: " + r.DefaultComponent)
	fmt.Println("    Comment: " + r.Comment)
	if len(keys) > 0 {
		fmt.Println("    Packages:")
		for _, k := range keys {
			fmt.Printf("        %q\n", k)
		}
	}
}

func printPublishes(publishes []aptlytypes.Publish, detail, jsonOut bool) {
	if jsonOut {
		b, _ := json.Marshal(publishes)
		fmt.Println(string(b))
		return
	}
	for _, p := range publishes {
		if detail {
			printPublishDetail(p)
		} else {
			fmt.Println(p.FullPrefix() + "/" + p.Distribution)
		}
	}
}

func printPublish(p aptlytypes.Publish, jsonOut bool) {
	if jsonOut {
		b, _ := json.Marshal(p)
		fmt.Println(string(b))
		return
	}
	printPublishDetail(p)
}

func printPublishDetail(p aptlytypes.Publish) {
	fmt.Println(p.FullPrefix() + "/" + p.Distribution)
	fmt.Println("    Source kind: " + p.SourceKind)
	fmt.Println("    Prefix: " + p.Prefix)
	fmt.Println("    Distribution: " + p.Distribution)
	fmt.Println("    Storage: " + p.Storage)
	fmt.Println("    Label: " + p.Label)
	fmt.Println("    Origin: " + p.Origin)
	fmt.Println("    Architectures: " + strings.Join(p.Architectures, ", "))
	fmt.Println("    Sources:")
	for _, s := range p.Sources {
		fmt.Printf("        %s (%s)\n", s.Name, s.Component)
	}
}

func printKeyInfo(info *signing.KeyInfo, jsonOut bool) {
	if jsonOut {
		b, _ := json.Marshal(info)
		fmt.Println(string(b))
		return
	}
	fmt.Println("Fingerprint: " + info.Fingerprint)
	for _, id := range info.Identities {
		fmt.Println("Identity: " + id)
	}
	fmt.Printf("Private key material: %v\n", info.HasPrivateKey)
}

// printSearchResults prints every (store, query, package) match found.
// Ordering is unspecified; callers must not depend on it.
func printSearchResults(matches []search.PackageMatch, jsonOut bool) {
	if jsonOut {
		type row struct {
			Store string `json:"store"`
			Query string `json:"query"`
			Key   string `json:"key"`
		}
		rows := make([]row, len(matches))
		for i, m := range matches {
			rows[i] = row{Store: m.Store.StoreName(), Query: m.Query, Key: m.Package.Key}
		}
		b, _ := json.Marshal(rows)
		fmt.Println(string(b))
		return
	}
	for _, m := range matches {
		fmt.Printf("%s\t%s\n", m.Store.StoreName(), m.Package.Key)
	}
}
