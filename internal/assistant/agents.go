package assistant

import (
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/agenttool"
	"google.golang.org/genai"
)

// Agent names as the model sees them.
const (
	OrchestratorName    = "meal_planner_agent"
	profileAgentName    = "meal_profile_agent"
	plannerAgentName    = "meal_planner_core_agent"
	shoppingAgentName   = "meal_ingredients_agent"
	costAgentName       = "cost_optimizer_agent"
	storeAgentName      = "store_finder_agent"
	restaurantAgentName = "restaurant_agent"
)

type agentSpec struct {
	name        string
	description string
	instruction string
	config      *genai.GenerateContentConfig
	tools       []tool.Tool
}

func newLLMAgent(llm model.LLM, spec agentSpec) (agent.Agent, error) {
	a, err := llmagent.New(llmagent.Config{
		Name:                  spec.name,
		Model:                 llm,
		Description:           spec.description,
		Instruction:           securityPolicy + "\n" + spec.instruction,
		GenerateContentConfig: spec.config,
		Tools:                 spec.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", spec.name, err)
	}
	return a, nil
}

// buildOrchestrator assembles the sub-agents as tools of the user-facing agent.
func buildOrchestrator(llm model.LLM, ts *toolset) (agent.Agent, error) {
	specs := []agentSpec{
		{
			name:        profileAgentName,
			description: "Completes a partial meal_request with safe defaults and reports which fields were defaulted.",
			instruction: mealProfileInstruction,
			config:      coreGenConfig(),
		},
		{
			name:        plannerAgentName,
			description: "Turns a complete meal_request into a one-day meal plan JSON document.",
			instruction: mealPlannerInstruction,
			config:      coreGenConfig(),
		},
		{
			name:        shoppingAgentName,
			description: "Turns a meal plan JSON document into a grouped shopping list.",
			instruction: shoppingListInstruction,
			config:      coreGenConfig(),
		},
		{
			name:        costAgentName,
			description: "Suggests the cheapest store per ingredient or cheaper substitutes.",
			instruction: costOptimizerInstruction,
			config:      coreGenConfig(),
		},
	}

	if ts.deps.Stores != nil {
		storeTool, err := ts.storeFinderTool()
		if err != nil {
			return nil, fmt.Errorf("create search_nearby_stores: %w", err)
		}
		restaurantTool, err := ts.restaurantTool()
		if err != nil {
			return nil, fmt.Errorf("create search_restaurants: %w", err)
		}
		specs = append(specs,
			agentSpec{
				name:        storeAgentName,
				description: "Finds real grocery stores and food markets near an area and explains the options.",
				instruction: storeFinderInstruction,
				config:      toolGenConfig(),
				tools:       []tool.Tool{storeTool},
			},
			agentSpec{
				name:        restaurantAgentName,
				description: "Recommends real restaurants that fit the user's diet, using live search results only.",
				instruction: restaurantInstruction,
				config:      toolGenConfig(),
				tools:       []tool.Tool{restaurantTool},
			},
		)
	}

	tools := make([]tool.Tool, 0, len(specs)+8)
	for _, spec := range specs {
		sub, err := newLLMAgent(llm, spec)
		if err != nil {
			return nil, err
		}
		tools = append(tools, agenttool.New(sub, nil))
	}

	dataTools, err := ts.orchestratorTools()
	if err != nil {
		return nil, fmt.Errorf("create data tools: %w", err)
	}
	tools = append(tools, dataTools...)

	return newLLMAgent(llm, agentSpec{
		name:        OrchestratorName,
		description: "Conversational meal planning assistant.",
		instruction: orchestratorInstruction,
		config:      orchestratorGenConfig(),
		tools:       tools,
	})
}
