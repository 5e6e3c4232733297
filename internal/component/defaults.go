package component

// DefaultRecords returns the built-in records served when the component
// directory yields nothing. Each call returns fresh values.
func DefaultRecords() []Record {
	var preview Props
	preview.Set("code", Prop{Type: "string"})
	preview.Set("language", Prop{Type: "string", Optional: true})
	preview.Set("showLineNumbers", Prop{Type: "boolean", Optional: true})

	var explorer Props
	explorer.Set("files", Prop{Type: "FileNode[]"})
	explorer.Set("onSelect", Prop{Type: "() => void"})
	explorer.Set("className", Prop{Type: "string", Optional: true})

	return []Record{
		{
			Name:         "Preview",
			Path:         "src/components/Preview.tsx",
			Props:        preview,
			Usage:        `<Preview code="example" />`,
			Dependencies: []string{"react"},
		},
		{
			Name:         "FileExplorer",
			Path:         "src/components/FileExplorer.tsx",
			Props:        explorer,
			Usage:        `<FileExplorer files={[]} onSelect={() => {}} />`,
			Dependencies: []string{"react"},
		},
	}
}
