package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cleanease/internal/config"
	"cleanease/internal/domain"
	"cleanease/internal/repository"
	"cleanease/internal/service"
)

const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// providerRecord es una fila del archivo de semillas.
type providerRecord struct {
	ID       int64   `json:"id"`
	Image    string  `json:"image"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	City     string  `json:"city"`
	Price    float64 `json:"price"`
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()

	providerSvc := service.NewProviderService(logger, stores.Providers, nil, nil, cfg.DefaultPageSize, cfg.MaxPageSize)

	var inputs []service.CreateProviderInput
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatalf("abrir archivo: %v", err)
		}
		inputs, err = parseProviders(f)
		f.Close()
		if err != nil {
			log.Fatalf("leer semillas: %v", err)
		}
	} else {
		inputs = promptProviders(bufio.NewReader(os.Stdin))
	}

	created, skipped := 0, 0
	for _, in := range inputs {
		p, err := providerSvc.Create(ctx, in)
		switch {
		case err == nil:
			created++
			fmt.Printf("%s[creado]%s %d %s (%s, %s)\n", colorGreen, colorReset, p.ID, p.Name, p.Category, p.City)
		case errors.Is(err, service.ErrProviderExists):
			skipped++
			fmt.Printf("%s[existe]%s %d %s\n", colorYellow, colorReset, in.ID, in.Name)
		default:
			log.Fatalf("crear proveedor %d: %v", in.ID, err)
		}
	}
	fmt.Printf("Listo: %d creados, %d omitidos.\n", created, skipped)
}

// parseProviders lee un arreglo JSON de proveedores y valida cada fila.
func parseProviders(r io.Reader) ([]service.CreateProviderInput, error) {
	var records []providerRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[int64]struct{}, len(records))
	inputs := make([]service.CreateProviderInput, 0, len(records))
	for i, rec := range records {
		if rec.ID <= 0 {
			return nil, fmt.Errorf("row %d: id must be positive", i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicated id %d", i, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if !domain.IsValidCategory(rec.Category) {
			return nil, fmt.Errorf("row %d: unknown category %q", i, rec.Category)
		}
		inputs = append(inputs, service.CreateProviderInput{
			ID:       rec.ID,
			Image:    rec.Image,
			Name:     rec.Name,
			Category: rec.Category,
			City:     rec.City,
			Price:    rec.Price,
		})
	}
	return inputs, nil
}

// promptProviders pide proveedores hasta un id vacío o el fin de la entrada.
func promptProviders(reader *bufio.Reader) []service.CreateProviderInput {
	var inputs []service.CreateProviderInput
	for {
		fmt.Println("===== Nuevo proveedor (id vacío para terminar) =====")
		id, ok := readIntDefault(reader, "ID: ", 0)
		if !ok || id <= 0 {
			return inputs
		}
		in := service.CreateProviderInput{ID: int64(id)}
		fields := []struct {
			prompt string
			dst    *string
		}{
			{"Nombre: ", &in.Name},
			{"URL de imagen: ", &in.Image},
			{"Ciudad: ", &in.City},
		}
		for _, f := range fields {
			if *f.dst, ok = readLine(reader, f.prompt); !ok {
				return inputs
			}
		}
		for {
			if in.Category, ok = readLine(reader, fmt.Sprintf("Categoría %v: ", domain.Categories)); !ok {
				return inputs
			}
			if domain.IsValidCategory(in.Category) {
				break
			}
			fmt.Println("Categoría inválida.")
		}
		rawPrice, ok := readLine(reader, "Precio: ")
		if !ok {
			return inputs
		}
		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil || price <= 0 {
			fmt.Println("Precio inválido, se descarta el proveedor.")
			continue
		}
		in.Price = price
		inputs = append(inputs, in)
	}
}

// readLine devuelve false cuando la entrada terminó sin más datos.
func readLine(reader *bufio.Reader, prompt string) (string, bool) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func readIntDefault(reader *bufio.Reader, prompt string, def int) (int, bool) {
	line, ok := readLine(reader, prompt)
	if !ok {
		return def, false
	}
	if line == "" {
		return def, true
	}
	if v, err := strconv.Atoi(line); err == nil {
		return v, true
	}
	return def, true
}
