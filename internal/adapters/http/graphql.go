package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
	"github.com/arjunrs/saferoutes/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	heatmapPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "HeatmapPoint",
		Fields: graphql.Fields{
			"lat":    &graphql.Field{Type: graphql.Float},
			"lon":    &graphql.Field{Type: graphql.Float},
			"weight": &graphql.Field{Type: graphql.Float},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"display_name": &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"lat": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					place, ok := p.Source.(domain.Place)
					if !ok {
						return nil, nil
					}
					return place.Location.Lat, nil
				},
			},
			"lon": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					place, ok := p.Source.(domain.Place)
					if !ok {
						return nil, nil
					}
					return place.Location.Lon, nil
				},
			},
		},
	})

	datasetStatsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DatasetStats",
		Fields: graphql.Fields{
			"crime_points":      &graphql.Field{Type: graphql.Int},
			"lighting_points":   &graphql.Field{Type: graphql.Int},
			"population_points": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"heatmap": &graphql.Field{
				Type:        graphql.NewList(heatmapPointType),
				Description: "Points of one heatmap layer: crime, lighting, population, or feedback",
				Args: graphql.FieldConfigArgument{
					"layer": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1000},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					layer := p.Args["layer"].(string)
					limit := p.Args["limit"].(int)

					points, err := heatmapLayer(p, deps, layer)
					if err != nil {
						return nil, err
					}
					if limit > 0 && len(points) > limit {
						points = points[:limit]
					}
					result := make([]map[string]interface{}, 0, len(points))
					for _, pt := range points {
						m := map[string]interface{}{"lat": pt.Lat, "lon": pt.Lon}
						if pt.Weight != nil {
							m["weight"] = *pt.Weight
						}
						result = append(result, m)
					}
					return result, nil
				},
			},
			"datasetStats": &graphql.Field{
				Type:        datasetStatsType,
				Description: "Sizes of the loaded spatial datasets",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					crimes, lights, population := deps.Heatmaps.DatasetSizes()
					return map[string]interface{}{
						"crime_points":      crimes,
						"lighting_points":   lights,
						"population_points": population,
					}, nil
				},
			},
			"searchPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Search places within the service area",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					return deps.Geocode.Search(p.Context, q)
				},
			},
			"distanceKm": &graphql.Field{
				Type:        graphql.Float,
				Description: "Great-circle distance between two points in kilometers",
				Args: graphql.FieldConfigArgument{
					"fromLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"fromLon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"toLat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"toLon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.GeoPoint{Lat: p.Args["fromLat"].(float64), Lon: p.Args["fromLon"].(float64)}
					to := domain.GeoPoint{Lat: p.Args["toLat"].(float64), Lon: p.Args["toLon"].(float64)}
					return geospatial.DistanceKm(from.Lat, from.Lon, to.Lat, to.Lon), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// heatmapLayer dispatches a GraphQL heatmap query to the matching service call.
func heatmapLayer(p graphql.ResolveParams, deps *Dependencies, layer string) ([]usecases.HeatmapPoint, error) {
	switch layer {
	case "crime":
		return deps.Heatmaps.Crime(p.Context).Points, nil
	case "lighting":
		return deps.Heatmaps.Lighting(p.Context).Points, nil
	case "population":
		return deps.Heatmaps.Population(p.Context).Points, nil
	case "feedback":
		hm, err := deps.Heatmaps.Feedback(p.Context)
		if err != nil {
			return nil, err
		}
		return hm.Points, nil
	default:
		return nil, fmt.Errorf("unknown heatmap layer: %s", layer)
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
