// Package niklib builds configuration-driven column transform pipelines for
// tabular machine-learning data.
//
// A JSON configuration file declares, per directive, which columns of a
// frame to select (by dtype and name pattern) and which transformer to
// apply; the compose package resolves the file into executable steps,
// computes data-dependent parameters such as shared category vocabularies,
// and runs the steps into one dense feature matrix. The split package
// partitions datasets from a sibling configuration file, and the
// visualization package renders category distributions.
//
// # Quick Start
//
//	provider := log.NewZerologProvider(log.LevelInfo)
//	config := compose.NewColumnTransformerConfig(nil, provider)
//	if _, err := config.SetConfigs("transforms.json"); err != nil {
//	    return err
//	}
//	steps, err := config.GeneratePipeline(train, full)
//	if err != nil {
//	    return err
//	}
//	ct := compose.NewColumnTransformer(steps, provider)
//	X, err := ct.FitTransform(train)
//
// See examples/pipeline_demo for a complete run including feature-name
// reconstruction and train/test splitting.
package niklib
