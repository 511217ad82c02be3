package tools

import (
	"fmt"
	"sort"

	"forkify/model"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a registry whose tools all operate on state.
func NewRegistry(state model.Model) (*Registry, error) {
	if state == nil {
		return nil, fmt.Errorf("tool registry needs a state")
	}

	registry := Registry{}
	for _, tool := range []Tool{
		NewRecipeSearch(state),
		NewRecipeGet(state),
		NewRecipeScale(state),
		NewBookmarkList(state),
		NewBookmarkAdd(state),
		NewBookmarkDelete(state),
	} {
		registry[tool.Name()] = tool
	}
	return &registry, nil
}

// GetTools returns all tools sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
