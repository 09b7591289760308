/*
Package parley is a declarative dialogue-script engine.

A script is a graph of conversation nodes grouped into flows. Each turn,
the engine decides which node the conversation moves to next, runs the
script's side-effect processors around that decision, and produces a
response. Transitions are guarded by conditions and ranked by priority
across three scopes: the current node, the current flow's LOCAL
defaults, and the script-wide GLOBAL defaults.

Minimal usage:

	script := domain.Script{
		"greet": {
			"start": {
				Response: domain.Text(""),
				Transitions: []domain.Transition{
					{Target: domain.To("hello"), Condition: conditions.ExactMatch("Hi")},
				},
			},
			"hello": {Response: domain.Text("Hi, how are you?")},
		},
	}

	engine, err := parley.New(script, domain.NewLabel("greet", "start"))
	...
	dc := domain.NewContext()
	dc.AddRequest(domain.NewMessage("Hi"))
	dc, err = engine.Run(ctx, dc)

Persistence adapters (pkg/adapters), a per-conversation runner
(pkg/runner) and a YAML script format (pkg/scriptyaml) are layered on
top of the core; the engine itself never touches I/O.
*/
package parley
