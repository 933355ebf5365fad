// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

/*
Package supervisor runs caremap's long-lived services under a suture v4 tree.

	RootSupervisor ("caremap")
	├── DataSupervisor ("data-layer")
	│   └── DatasetService (fetch, parse, aggregate, publish)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The layers restart independently. A dataset load that fails is retried with
the supervisor's backoff while the HTTP server keeps answering: the health
endpoints report the failure and dataset endpoints answer 503. Once the
catalog is published the dataset service exits for good.

Supervisor events are logged through sutureslog, which writes to zerolog via
logging.NewSlogLogger.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewDatasetService(loader, build, holder))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
