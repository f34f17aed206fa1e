package permission_test

import (
	"fmt"

	"github.com/jonwraymond/toolgate/permission"
)

func ExampleEngine_Evaluate() {
	engine := permission.NewEngine()
	session := permission.Subject{
		Enabled: true,
		Permissions: &permission.Set{
			AllowedTools: []string{"xano_list_*", "xano_get_*"},
			DeniedTools:  []string{"xano_get_secret*"},
		},
	}

	for _, op := range []string{"xano_list_tables", "xano_get_secrets", "xano_delete_table"} {
		d := engine.Evaluate(session, op)
		if d.Allowed {
			fmt.Printf("%s: allowed\n", op)
			continue
		}
		fmt.Printf("%s: %s\n", op, d.Reason)
	}
	// Output:
	// xano_list_tables: allowed
	// xano_get_secrets: Tool xano_get_secrets is denied by permissions
	// xano_delete_table: Tool xano_delete_table is not in allowed tools list
}
