package driver

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Args identifies the target cluster. The host process passes these on the
// driver's command line but they are only consumed at connect time.
type Args struct {
	Context     string
	Namespace   string
	ClusterName string
}

// ParseArgs extracts the target flags from argv. Unknown flags are tolerated
// so the host process can grow its invocation without breaking older
// drivers; missing required flags surface later, via Validate at connect.
func ParseArgs(argv []string) Args {
	var args Args

	fs := pflag.NewFlagSet("es-driver", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	fs.StringVar(&args.Context, "context", "", "kubeconfig context of the target cluster")
	fs.StringVar(&args.Namespace, "namespace", "", "namespace the cluster runs in")
	fs.StringVar(&args.ClusterName, "cluster-name", "", "Elasticsearch cluster name")

	// Parse errors beyond unknown flags (e.g. a flag without a value) leave
	// the struct partially filled; Validate reports what is missing.
	_ = fs.Parse(argv)

	return args
}

func (a Args) Validate() error {
	if a.Context == "" {
		return fmt.Errorf("missing required argument: --context")
	}
	if a.Namespace == "" {
		return fmt.Errorf("missing required argument: --namespace")
	}
	if a.ClusterName == "" {
		return fmt.Errorf("missing required argument: --cluster-name")
	}
	return nil
}
