package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/filmoteka/movie_catalog/internal/apperr"
	"github.com/filmoteka/movie_catalog/internal/authz"
	"github.com/filmoteka/movie_catalog/internal/models"
	"github.com/filmoteka/movie_catalog/internal/service/catalog"
	"github.com/filmoteka/movie_catalog/internal/service/token"
	"github.com/filmoteka/movie_catalog/internal/service/user"
	"github.com/filmoteka/movie_catalog/internal/upload"
)

// Resolver carries the services the schema resolves against.
type Resolver struct {
	Users   *user.Service
	Tokens  *token.Service
	Catalog *catalog.Service
	Perms   *authz.Permissions
}

func (r *Resolver) requirePermission(p graphql.ResolveParams, required string) error {
	v := ViewerFrom(p.Context)
	if !v.IsAuthenticated {
		return apperr.ErrUnauthenticated
	}
	if !authz.HasPermission(v.Permissions, required) {
		return apperr.New(apperr.Authorization, "permission required: "+required)
	}
	return nil
}

func uintArg(args map[string]interface{}, name string) (uint, error) {
	switch v := args[name].(type) {
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, apperr.New(apperr.Validation, "invalid "+name)
		}
		return uint(n), nil
	case int:
		if v < 0 {
			return 0, apperr.New(apperr.Validation, "invalid "+name)
		}
		return uint(v), nil
	default:
		return 0, apperr.New(apperr.Validation, name+" is required")
	}
}

func intArg(args map[string]interface{}, name string, def int) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return def
}

func strArg(args map[string]interface{}, name string) (string, bool) {
	v, ok := args[name].(string)
	return v, ok
}

func movieFromSource(src interface{}) (models.Movie, bool) {
	switch m := src.(type) {
	case models.Movie:
		return m, true
	case *models.Movie:
		return *m, true
	}
	return models.Movie{}, false
}

func actorFromSource(src interface{}) (models.Actor, bool) {
	switch a := src.(type) {
	case models.Actor:
		return a, true
	case *models.Actor:
		return *a, true
	}
	return models.Actor{}, false
}

func authResponse(u models.User, access, refresh string) map[string]interface{} {
	out := map[string]interface{}{
		"user":        u,
		"accessToken": access,
	}
	if refresh != "" {
		out["refreshToken"] = refresh
	}
	return out
}

// NewSchema builds the full query/mutation schema against the
// resolver's services.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.ID},
			"email":     &graphql.Field{Type: graphql.String},
			"firstName": &graphql.Field{Type: graphql.String},
			"lastName":  &graphql.Field{Type: graphql.String},
			"role":      &graphql.Field{Type: graphql.String},
		},
	})

	authResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthResponse",
		Fields: graphql.Fields{
			"user":         &graphql.Field{Type: userType},
			"accessToken":  &graphql.Field{Type: graphql.String},
			"refreshToken": &graphql.Field{Type: graphql.String},
		},
	})

	var movieType, actorType *graphql.Object

	actorType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Actor",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.ID},
				"name": &graphql.Field{Type: graphql.String},
				"birthDate": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if a, ok := actorFromSource(p.Source); ok {
							return a.BirthDate.Format("2006-01-02"), nil
						}
						return nil, nil
					},
				},
				"nationality": &graphql.Field{Type: graphql.String},
				"biography":   &graphql.Field{Type: graphql.String},
				"movies": &graphql.Field{
					Type: graphql.NewList(movieType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if a, ok := actorFromSource(p.Source); ok {
							return a.Movies, nil
						}
						return []models.Movie{}, nil
					},
				},
			}
		}),
	})

	movieType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Movie",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.ID},
				"title":       &graphql.Field{Type: graphql.String},
				"director":    &graphql.Field{Type: graphql.String},
				"releaseYear": &graphql.Field{Type: graphql.Int},
				"genre":       &graphql.Field{Type: graphql.String},
				"rating":      &graphql.Field{Type: graphql.Float},
				"available":   &graphql.Field{Type: graphql.Boolean},
				"rentalPrice": &graphql.Field{Type: graphql.Float},
				"coverImage": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if m, ok := movieFromSource(p.Source); ok && m.CoverImage != "" {
							return upload.URL(m.CoverImage), nil
						}
						return nil, nil
					},
				},
				"actors": &graphql.Field{
					Type: graphql.NewList(actorType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if m, ok := movieFromSource(p.Source); ok {
							return m.Actors, nil
						}
						return []models.Actor{}, nil
					},
				},
			}
		}),
	})

	paginationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Pagination",
		Fields: graphql.Fields{
			"currentPage":  &graphql.Field{Type: graphql.Int},
			"totalPages":   &graphql.Field{Type: graphql.Int},
			"totalItems":   &graphql.Field{Type: graphql.Int},
			"itemsPerPage": &graphql.Field{Type: graphql.Int},
			"hasNextPage":  &graphql.Field{Type: graphql.Boolean},
			"hasPrevPage":  &graphql.Field{Type: graphql.Boolean},
		},
	})

	paginatedMoviesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PaginatedMovies",
		Fields: graphql.Fields{
			"movies":     &graphql.Field{Type: graphql.NewList(movieType)},
			"pagination": &graphql.Field{Type: paginationType},
		},
	})

	paginatedActorsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PaginatedActors",
		Fields: graphql.Fields{
			"actors":     &graphql.Field{Type: graphql.NewList(actorType)},
			"pagination": &graphql.Field{Type: paginationType},
		},
	})

	registerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "RegisterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"firstName": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"lastName":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	loginInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LoginInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQueryType",
		Fields: graphql.Fields{
			"movie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermReadMovies); err != nil {
						return nil, err
					}
					id, err := uintArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return r.Catalog.GetMovie(id)
				},
			},
			"movies": &graphql.Field{
				Type: paginatedMoviesType,
				Args: graphql.FieldConfigArgument{
					"page":  &graphql.ArgumentConfig{Type: graphql.Int},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermReadMovies); err != nil {
						return nil, err
					}
					movies, pagination, err := r.Catalog.ListMovies(
						intArg(p.Args, "page", 1), intArg(p.Args, "limit", 10))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"movies":     movies,
						"pagination": pagination,
					}, nil
				},
			},
			"actor": &graphql.Field{
				Type: actorType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermReadActors); err != nil {
						return nil, err
					}
					id, err := uintArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return r.Catalog.GetActor(id)
				},
			},
			"actors": &graphql.Field{
				Type: paginatedActorsType,
				Args: graphql.FieldConfigArgument{
					"page":  &graphql.ArgumentConfig{Type: graphql.Int},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermReadActors); err != nil {
						return nil, err
					}
					actors, pagination, err := r.Catalog.ListActors(
						intArg(p.Args, "page", 1), intArg(p.Args, "limit", 10))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"actors":     actors,
						"pagination": pagination,
					}, nil
				},
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := ViewerFrom(p.Context)
					if !v.IsAuthenticated {
						return nil, apperr.ErrUnauthenticated
					}
					return *v.User, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: authResponseType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(registerInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input, _ := p.Args["input"].(map[string]interface{})
					email, _ := strArg(input, "email")
					password, _ := strArg(input, "password")
					firstName, _ := strArg(input, "firstName")
					lastName, _ := strArg(input, "lastName")

					u, access, refresh, err := r.Users.Register(user.RegisterInput{
						Email:     email,
						Password:  password,
						FirstName: firstName,
						LastName:  lastName,
					})
					if err != nil {
						return nil, err
					}
					return authResponse(u, access, refresh), nil
				},
			},
			"login": &graphql.Field{
				Type: authResponseType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(loginInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input, _ := p.Args["input"].(map[string]interface{})
					email, _ := strArg(input, "email")
					password, _ := strArg(input, "password")

					u, access, refresh, err := r.Users.Login(email, password)
					if err != nil {
						return nil, err
					}
					return authResponse(u, access, refresh), nil
				},
			},
			"logout": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := ViewerFrom(p.Context)
					if !v.IsAuthenticated {
						return nil, apperr.ErrUnauthenticated
					}
					if err := r.Users.Logout(v.User.ID); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"refreshToken": &graphql.Field{
				Type: authResponseType,
				Args: graphql.FieldConfigArgument{
					"refreshToken": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := strArg(p.Args, "refreshToken")
					access, u, err := r.Tokens.Rotate(raw)
					if err != nil {
						return nil, err
					}
					return authResponse(u, access, ""), nil
				},
			},
			"addMovie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"director":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"releaseYear": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"genre":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"rating":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"rentalPrice": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"available":   &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermCreateMovies); err != nil {
						return nil, err
					}
					in := catalog.MovieInput{
						Title:       p.Args["title"].(string),
						Director:    p.Args["director"].(string),
						ReleaseYear: p.Args["releaseYear"].(int),
						Genre:       p.Args["genre"].(string),
						Rating:      p.Args["rating"].(float64),
						RentalPrice: p.Args["rentalPrice"].(float64),
					}
					if v, ok := p.Args["available"].(bool); ok {
						in.Available = &v
					}
					return r.Catalog.CreateMovie(in)
				},
			},
			"updateMovie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.String},
					"director":    &graphql.ArgumentConfig{Type: graphql.String},
					"releaseYear": &graphql.ArgumentConfig{Type: graphql.Int},
					"genre":       &graphql.ArgumentConfig{Type: graphql.String},
					"rating":      &graphql.ArgumentConfig{Type: graphql.Float},
					"rentalPrice": &graphql.ArgumentConfig{Type: graphql.Float},
					"available":   &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermUpdateMovies); err != nil {
						return nil, err
					}
					id, err := uintArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					var in catalog.MovieUpdate
					if v, ok := p.Args["title"].(string); ok {
						in.Title = &v
					}
					if v, ok := p.Args["director"].(string); ok {
						in.Director = &v
					}
					if v, ok := p.Args["releaseYear"].(int); ok {
						in.ReleaseYear = &v
					}
					if v, ok := p.Args["genre"].(string); ok {
						in.Genre = &v
					}
					if v, ok := p.Args["rating"].(float64); ok {
						in.Rating = &v
					}
					if v, ok := p.Args["rentalPrice"].(float64); ok {
						in.RentalPrice = &v
					}
					if v, ok := p.Args["available"].(bool); ok {
						in.Available = &v
					}
					return r.Catalog.UpdateMovie(id, in)
				},
			},
			"deleteMovie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermDeleteMovies); err != nil {
						return nil, err
					}
					id, err := uintArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return r.Catalog.DeleteMovie(id)
				},
			},
			"addActor": &graphql.Field{
				Type: actorType,
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"birthDate":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"nationality": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"biography":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermCreateActors); err != nil {
						return nil, err
					}
					birthDate, err := parseDate(p.Args["birthDate"].(string))
					if err != nil {
						return nil, err
					}
					return r.Catalog.CreateActor(catalog.ActorInput{
						Name:        p.Args["name"].(string),
						BirthDate:   birthDate,
						Nationality: p.Args["nationality"].(string),
						Biography:   p.Args["biography"].(string),
					})
				},
			},
			"updateActor": &graphql.Field{
				Type: actorType,
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":        &graphql.ArgumentConfig{Type: graphql.String},
					"birthDate":   &graphql.ArgumentConfig{Type: graphql.String},
					"nationality": &graphql.ArgumentConfig{Type: graphql.String},
					"biography":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermUpdateActors); err != nil {
						return nil, err
					}
					id, err := uintArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					var in catalog.ActorUpdate
					if v, ok := p.Args["name"].(string); ok {
						in.Name = &v
					}
					if v, ok := p.Args["birthDate"].(string); ok {
						birthDate, err := parseDate(v)
						if err != nil {
							return nil, err
						}
						in.BirthDate = &birthDate
					}
					if v, ok := p.Args["nationality"].(string); ok {
						in.Nationality = &v
					}
					if v, ok := p.Args["biography"].(string); ok {
						in.Biography = &v
					}
					return r.Catalog.UpdateActor(id, in)
				},
			},
			"deleteActor": &graphql.Field{
				Type: actorType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermDeleteActors); err != nil {
						return nil, err
					}
					id, err := uintArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return r.Catalog.DeleteActor(id)
				},
			},
			"addActorToMovie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"movieId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"actorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermUpdateMovies); err != nil {
						return nil, err
					}
					movieID, err := uintArg(p.Args, "movieId")
					if err != nil {
						return nil, err
					}
					actorID, err := uintArg(p.Args, "actorId")
					if err != nil {
						return nil, err
					}
					if err := r.Catalog.AttachActor(movieID, actorID); err != nil {
						return nil, err
					}
					return r.Catalog.GetMovie(movieID)
				},
			},
			"removeActorFromMovie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"movieId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"actorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.requirePermission(p, authz.PermUpdateMovies); err != nil {
						return nil, err
					}
					movieID, err := uintArg(p.Args, "movieId")
					if err != nil {
						return nil, err
					}
					actorID, err := uintArg(p.Args, "actorId")
					if err != nil {
						return nil, err
					}
					if err := r.Catalog.DetachActor(movieID, actorID); err != nil {
						return nil, err
					}
					return r.Catalog.GetMovie(movieID)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    rootQuery,
		Mutation: mutation,
	})
}
