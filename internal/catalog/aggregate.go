package catalog

// AggregatePartners flattens the nested university/department/partner dataset
// into one PartnerDetail per distinct slug. The first record encountered for a
// slug seeds the aggregate's name, country and coordinates; every
// (university, department, partner) triple appends exactly one edge, including
// triples whose fields repeat an existing edge (a university can genuinely
// offer the same partnership through multiple agreements). Output keeps
// first-encountered order.
//
// The identity key is the name slug alone. Two same-named institutions in
// different countries merge into one aggregate; country stays display-only
// because the slug is embedded in persisted URLs.
//
// Records whose name cannot produce a slug are skipped rather than failing the
// whole aggregation; the loader validates names up front, so this only guards
// datasets that bypassed LoadDataset.
func AggregatePartners(universities []University) []PartnerDetail {
	index := make(map[string]int)
	details := make([]PartnerDetail, 0)

	for _, uni := range universities {
		for _, dept := range uni.Departments {
			for _, partner := range dept.Partners {
				slug, err := DeriveSlug(partner.Name)
				if err != nil {
					continue
				}

				i, ok := index[slug]
				if !ok {
					details = append(details, PartnerDetail{
						ID:      slug,
						Name:    partner.Name,
						Country: partner.Country,
						Lat:     partner.Lat,
						Lng:     partner.Lng,
					})
					i = len(details) - 1
					index[slug] = i
				}

				details[i].TurkishPartners = append(details[i].TurkishPartners, TurkishPartnerInfo{
					UniversityID:      uni.ID,
					UniversityName:    uni.Name,
					UniversityCity:    uni.City,
					Department:        dept.Name,
					PartnerDepartment: partner.Department,
				})
			}
		}
	}

	return details
}
