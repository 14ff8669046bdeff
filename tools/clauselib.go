package tools

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/athapong/contract-intel/services"
	"github.com/athapong/contract-intel/util"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sashabaranov/go-openai"
)

// Embedding models supported for the clause library.
var embeddingModelDimensions = map[openai.EmbeddingModel]uint64{
	openai.AdaEmbeddingV2:  1536,
	openai.SmallEmbedding3: 512,
	openai.LargeEmbedding3: 2048,
}

const defaultEmbeddingModel = openai.LargeEmbedding3

func validateEmbeddingModel(modelStr string) (openai.EmbeddingModel, uint64, error) {
	model := openai.EmbeddingModel(modelStr)
	if dimensions, ok := embeddingModelDimensions[model]; ok {
		return model, dimensions, nil
	}
	return "", 0, fmt.Errorf("unsupported embedding model: %s. Supported models: %s",
		modelStr,
		"text-embedding-ada-002, text-embedding-3-small, text-embedding-3-large")
}

var qdrantClient = sync.OnceValue(func() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port := os.Getenv("QDRANT_PORT")
	apiKey := os.Getenv("QDRANT_API_KEY")
	if host == "" || port == "" || apiKey == "" {
		panic("QDRANT_HOST, QDRANT_PORT, or QDRANT_API_KEY is not set, please set it in the environment")
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		panic(fmt.Sprintf("failed to parse QDRANT_PORT: %v", err))
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   portInt,
		APIKey: apiKey,
		UseTLS: true,
	})

	if err != nil {
		panic(fmt.Sprintf("failed to connect to Qdrant: %v", err))
	}

	return client
})

// RegisterClauseLibraryTools exposes a Qdrant-backed library of classified
// clauses so similar wording can be found across analyzed contracts.
func RegisterClauseLibraryTools(s *server.MCPServer) {
	createCollectionTool := mcp.NewTool("clause_library_create_collection",
		mcp.WithDescription("Create a new clause library collection"),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Clause library collection name")),
		mcp.WithString("model", mcp.Description("Embedding model to use (default: text-embedding-3-large)")),
	)

	deleteCollectionTool := mcp.NewTool("clause_library_delete_collection",
		mcp.WithDescription("Delete a clause library collection"),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Clause library collection name")),
	)

	listCollectionTool := mcp.NewTool("clause_library_list_collections",
		mcp.WithDescription("List all clause library collections"),
	)

	indexAnalysisTool := mcp.NewTool("clause_library_index_analysis",
		mcp.WithDescription("Index every classified clause of a stored analysis into the clause library"),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Clause library collection name")),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("Analysis ID returned by contract_analyze")),
		mcp.WithString("model", mcp.Description("Embedding model to use (default: text-embedding-3-large)")),
	)

	searchTool := mcp.NewTool("clause_library_search",
		mcp.WithDescription("Find clauses similar to a query across analyzed contracts"),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Clause library collection name")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Clause text or keywords to search for")),
		mcp.WithString("model", mcp.Description("Embedding model to use (default: text-embedding-3-large)")),
	)

	s.AddTool(createCollectionTool, util.ErrorGuard(util.AdaptLegacyHandler(createCollectionHandler)))
	s.AddTool(deleteCollectionTool, util.ErrorGuard(util.AdaptLegacyHandler(deleteCollectionHandler)))
	s.AddTool(listCollectionTool, util.ErrorGuard(util.AdaptLegacyHandler(listCollectionHandler)))
	s.AddTool(indexAnalysisTool, util.ErrorGuard(util.AdaptLegacyHandler(indexAnalysisHandler)))
	s.AddTool(searchTool, util.ErrorGuard(util.AdaptLegacyHandler(clauseSearchHandler)))
}

func createCollectionHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	collection := arguments["collection"].(string)
	model := defaultEmbeddingModel

	if modelArg, ok := arguments["model"].(string); ok && modelArg != "" {
		embModel, _, err := validateEmbeddingModel(modelArg)
		if err != nil {
			return nil, err
		}
		model = embModel
	}

	ctx := context.Background()

	collectionInfo, err := qdrantClient().GetCollectionInfo(ctx, collection)
	if err == nil && collectionInfo != nil {
		return nil, fmt.Errorf("collection %s already exists", collection)
	}

	dimensions := embeddingModelDimensions[model]

	err = qdrantClient().CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     dimensions,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}

	result := fmt.Sprintf("Successfully created collection: %s with model: %s", collection, model)
	return mcp.NewToolResultText(result), nil
}

func deleteCollectionHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	collection := arguments["collection"].(string)
	ctx := context.Background()

	collectionInfo, err := qdrantClient().GetCollectionInfo(ctx, collection)
	if err != nil || collectionInfo == nil {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	err = qdrantClient().DeleteCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to delete collection: %v", err)
	}

	result := fmt.Sprintf("Successfully deleted collection: %s", collection)
	return mcp.NewToolResultText(result), nil
}

func listCollectionHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ctx := context.Background()
	collections, err := qdrantClient().ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Collections: %v", collections)), nil
}

func indexAnalysisHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	collection := arguments["collection"].(string)

	analysis, errResult := loadAnalysis(arguments)
	if errResult != nil {
		return errResult, nil
	}

	model := defaultEmbeddingModel
	if modelArg, ok := arguments["model"].(string); ok && modelArg != "" {
		embModel, _, err := validateEmbeddingModel(modelArg)
		if err != nil {
			return nil, err
		}
		model = embModel
	}

	if len(analysis.Clauses) == 0 {
		return mcp.NewToolResultText("Analysis contains no classified clauses to index"), nil
	}

	var points []*qdrant.PointStruct
	for i, clause := range analysis.Clauses {
		embedding, err := embedText(clause.Text, model)
		if err != nil {
			return nil, err
		}

		point := &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(analysis.ID+strconv.Itoa(i))).String()),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"analysisId": analysis.ID,
				"contract":   analysis.Document.Name,
				"category":   string(clause.Category),
				"text":       clause.Text,
				"model":      string(model),
			}),
		}
		points = append(points, point)
	}

	ctx := context.Background()
	waitUpsert := true

	upsertResp, err := qdrantClient().Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &waitUpsert,
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert points: %v", err)
	}

	result := fmt.Sprintf("Indexed %d clauses from analysis %s\nOperation ID: %d\nStatus: %s",
		len(points), analysis.ID, upsertResp.OperationId, upsertResp.Status)
	return mcp.NewToolResultText(result), nil
}

func clauseSearchHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	collection := arguments["collection"].(string)
	query := arguments["query"].(string)

	model := defaultEmbeddingModel
	if modelArg, ok := arguments["model"].(string); ok && modelArg != "" {
		embModel, _, err := validateEmbeddingModel(modelArg)
		if err != nil {
			return nil, err
		}
		model = embModel
	}

	embedding, err := embedText(query, model)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	limit := uint64(5)

	results, err := qdrantClient().Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search collection: %v", err)
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No similar clauses found"), nil
	}

	var sb strings.Builder
	for i, hit := range results {
		payload := hit.Payload
		sb.WriteString(fmt.Sprintf("%d. [%s] (score %.3f, contract %s)\n%s\n\n",
			i+1,
			payloadString(payload, "category"),
			hit.Score,
			payloadString(payload, "contract"),
			payloadString(payload, "text")))
	}
	return mcp.NewToolResultText(strings.TrimSpace(sb.String())), nil
}

func embedText(text string, model openai.EmbeddingModel) ([]float32, error) {
	resp, err := services.DefaultOpenAIClient().CreateEmbeddings(context.Background(), openai.EmbeddingRequest{
		Input: []string{text},
		Model: model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %v", err)
	}
	return resp.Data[0].Embedding, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
